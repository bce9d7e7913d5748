package server

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
)

// listQuery carries the filter parameters shared by every ledger list.
type listQuery struct {
	pagination.Pagination
	Search    string `form:"search"`
	Status    string `form:"status"`
	Category  string `form:"category"`
	Direction string `form:"direction"`
	Period    string `form:"period"`
	AsOf      string `form:"as_of"`
}

type transitionRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
}

func parseOptionalInt64(value string) (*int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// bindExpectedVersion reads expected_version from the JSON body and falls back
// to an If-Match header. A missing version is left for the service to reject.
func bindExpectedVersion(c *gin.Context) (int64, error) {
	var req transitionRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return 0, invalidRequestError()
		}
	}
	if req.ExpectedVersion != 0 {
		return req.ExpectedVersion, nil
	}

	version, err := parseOptionalInt64(strings.Trim(c.GetHeader("If-Match"), `"`))
	if err != nil {
		return 0, newValidationError("expected_version", "invalid_expected_version", "expected_version must be a positive integer")
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}
