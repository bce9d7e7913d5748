package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
)

type recordDayRequest struct {
	Date           string                            `json:"date"`
	OpeningBalance string                            `json:"opening_balance"`
	ClosingBalance string                            `json:"closing_balance"`
	Transactions   []cashflowdomain.TransactionInput `json:"transactions"`
}

type appendTransactionRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
	cashflowdomain.TransactionInput
}

func (s *Server) RecordCashflowDay(c *gin.Context) {
	var req recordDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashflowSvc.RecordDay(c.Request.Context(), cashflowdomain.RecordDayRequest{
		Date:           strings.TrimSpace(req.Date),
		OpeningBalance: strings.TrimSpace(req.OpeningBalance),
		ClosingBalance: strings.TrimSpace(req.ClosingBalance),
		Transactions:   req.Transactions,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) AppendCashflowTransaction(c *gin.Context) {
	var req appendTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashflowSvc.AppendTransaction(c.Request.Context(), cashflowdomain.AppendTransactionRequest{
		Date:            strings.TrimSpace(c.Param("date")),
		ExpectedVersion: req.ExpectedVersion,
		Transaction:     req.TransactionInput,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCashflowDay(c *gin.Context) {
	resp, err := s.cashflowSvc.GetDay(c.Request.Context(), cashflowdomain.GetDayRequest{
		Date: strings.TrimSpace(c.Param("date")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCashflowDays(c *gin.Context) {
	var query struct {
		pagination.Pagination
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashflowSvc.ListDays(c.Request.Context(), cashflowdomain.ListDaysRequest{
		From:      strings.TrimSpace(query.From),
		To:        strings.TrimSpace(query.To),
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":            resp.Days,
		"net_movement":    resp.NetMovement,
		"next_page_token": resp.NextPageToken,
		"has_more":        resp.HasMore,
	})
}

func (s *Server) VerifyCashflow(c *gin.Context) {
	report, err := s.cashflowSvc.Verify(c.Request.Context(), cashflowdomain.VerifyRequest{
		From: strings.TrimSpace(c.Query("from")),
		To:   strings.TrimSpace(c.Query("to")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       report,
		"consistent": report.Consistent(),
	})
}
