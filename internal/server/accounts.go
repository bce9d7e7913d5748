package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
)

type createAccountRequest struct {
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	PaymentMethod string         `json:"payment_method"`
	DueDate       string         `json:"due_date"`
	Amount        string         `json:"amount"`
	Status        string         `json:"status"`
	Direction     string         `json:"direction"`
	Metadata      map[string]any `json:"metadata"`
}

func (s *Server) ListPlatformAccounts(c *gin.Context) {
	s.listAccounts(c, accountdomain.ScopePlatform)
}

func (s *Server) ListAccounts(c *gin.Context) {
	s.listAccounts(c, accountdomain.ScopeTenant)
}

func (s *Server) CreatePlatformAccount(c *gin.Context) {
	s.createAccount(c, accountdomain.ScopePlatform)
}

func (s *Server) CreateAccount(c *gin.Context) {
	s.createAccount(c, accountdomain.ScopeTenant)
}

func (s *Server) GetPlatformAccount(c *gin.Context) {
	s.getAccount(c, accountdomain.ScopePlatform)
}

func (s *Server) GetAccount(c *gin.Context) {
	s.getAccount(c, accountdomain.ScopeTenant)
}

func (s *Server) SettlePlatformAccount(c *gin.Context) {
	s.transitionAccount(c, accountdomain.ScopePlatform, s.accountSvc.Settle)
}

func (s *Server) SettleAccount(c *gin.Context) {
	s.transitionAccount(c, accountdomain.ScopeTenant, s.accountSvc.Settle)
}

func (s *Server) CancelPlatformAccount(c *gin.Context) {
	s.transitionAccount(c, accountdomain.ScopePlatform, s.accountSvc.Cancel)
}

func (s *Server) CancelAccount(c *gin.Context) {
	s.transitionAccount(c, accountdomain.ScopeTenant, s.accountSvc.Cancel)
}

func (s *Server) listAccounts(c *gin.Context, scope accountdomain.Scope) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListAccountRequest{
		Scope:     scope,
		Search:    strings.TrimSpace(query.Search),
		Status:    strings.TrimSpace(query.Status),
		Category:  strings.TrimSpace(query.Category),
		Direction: strings.TrimSpace(query.Direction),
		Period:    strings.TrimSpace(query.Period),
		AsOf:      strings.TrimSpace(query.AsOf),
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":            resp.Accounts,
		"totals":          resp.Totals,
		"as_of":           resp.AsOf,
		"next_page_token": resp.NextPageToken,
		"has_more":        resp.HasMore,
	})
}

func (s *Server) createAccount(c *gin.Context, scope accountdomain.Scope) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.Create(c.Request.Context(), accountdomain.CreateAccountRequest{
		Scope:         scope,
		Description:   req.Description,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		Amount:        req.Amount,
		Status:        req.Status,
		Direction:     req.Direction,
		Metadata:      req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) getAccount(c *gin.Context, scope accountdomain.Scope) {
	resp, err := s.accountSvc.GetByID(c.Request.Context(), accountdomain.GetAccountRequest{
		Scope: scope,
		ID:    strings.TrimSpace(c.Param("id")),
		AsOf:  strings.TrimSpace(c.Query("as_of")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type accountTransition func(context.Context, accountdomain.TransitionAccountRequest) (accountdomain.AccountView, error)

func (s *Server) transitionAccount(c *gin.Context, scope accountdomain.Scope, apply accountTransition) {
	version, err := bindExpectedVersion(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := apply(c.Request.Context(), accountdomain.TransitionAccountRequest{
		Scope:           scope,
		ID:              strings.TrimSpace(c.Param("id")),
		ExpectedVersion: version,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
