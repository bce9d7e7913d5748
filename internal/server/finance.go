package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	financedomain "github.com/smallbiznis/storeledger/internal/financeoverview/domain"
)

func (s *Server) GetFinanceSummary(c *gin.Context) {
	resp, err := s.financeSvc.Summary(c.Request.Context(), financedomain.SummaryRequest{
		AsOf: strings.TrimSpace(c.Query("as_of")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
