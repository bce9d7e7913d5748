package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storeledger/internal/invoice/document"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
)

type createInvoiceRequest struct {
	ClientName    string         `json:"client_name"`
	PlanName      string         `json:"plan_name"`
	PlanPrice     string         `json:"plan_price"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	PaymentMethod string         `json:"payment_method"`
	InvoiceDate   string         `json:"invoice_date"`
	DueDate       string         `json:"due_date"`
	Amount        string         `json:"amount"`
	Status        string         `json:"status"`
	Metadata      map[string]any `json:"metadata"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		ClientName:    req.ClientName,
		PlanName:      req.PlanName,
		PlanPrice:     req.PlanPrice,
		Description:   req.Description,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		Amount:        req.Amount,
		Status:        req.Status,
		Metadata:      req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Search:    strings.TrimSpace(query.Search),
		Status:    strings.TrimSpace(query.Status),
		Category:  strings.TrimSpace(query.Category),
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
		"data":            resp.Invoices,
		"totals":          resp.Totals,
		"as_of":           resp.AsOf,
		"next_page_token": resp.NextPageToken,
		"has_more":        resp.HasMore,
	})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID:   strings.TrimSpace(c.Param("id")),
		AsOf: strings.TrimSpace(c.Query("as_of")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoicePDF(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID:   strings.TrimSpace(c.Param("id")),
		AsOf: strings.TrimSpace(c.Query("as_of")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdf, err := document.Render(inv)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+inv.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, document.ContentType, pdf)
}

func (s *Server) PayInvoice(c *gin.Context) {
	s.transitionInvoice(c, s.invoiceSvc.Pay)
}

func (s *Server) CancelInvoice(c *gin.Context) {
	s.transitionInvoice(c, s.invoiceSvc.Cancel)
}

func (s *Server) transitionInvoice(c *gin.Context, apply func(context.Context, invoicedomain.TransitionInvoiceRequest) (invoicedomain.InvoiceView, error)) {
	version, err := bindExpectedVersion(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := apply(c.Request.Context(), invoicedomain.TransitionInvoiceRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		ExpectedVersion: version,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMRR(c *gin.Context) {
	resp, err := s.invoiceSvc.MRR(c.Request.Context(), invoicedomain.MRRRequest{
		AsOf: strings.TrimSpace(c.Query("as_of")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
