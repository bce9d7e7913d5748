package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	financedomain "github.com/smallbiznis/storeledger/internal/financeoverview/domain"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type inconsistencyDetail struct {
	Date       ledgerdomain.Date `json:"date"`
	Expected   int64             `json:"expected_delta"`
	Actual     int64             `json:"actual_delta"`
	Difference int64             `json:"difference"`
}

type errorPayload struct {
	Type          string               `json:"type"`
	Message       string               `json:"message"`
	Errors        []ValidationError    `json:"errors,omitempty"`
	Inconsistency *inconsistencyDetail `json:"inconsistency,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, validationPayload(vErr.Errors...)
	}

	var recordErr *ledgerdomain.ValidationError
	if errors.As(err, &recordErr) {
		return http.StatusBadRequest, validationPayload(ValidationError{
			Field:   recordErr.Field,
			Code:    recordErr.Code,
			Message: recordErr.Message,
		})
	}

	var inconsistency *ledgerdomain.LedgerInconsistencyError
	if errors.As(err, &inconsistency) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "ledger_inconsistency",
			Message: inconsistency.Error(),
			Inconsistency: &inconsistencyDetail{
				Date:       inconsistency.Date,
				Expected:   inconsistency.Expected,
				Actual:     inconsistency.Actual,
				Difference: inconsistency.Difference(),
			},
		}
	}

	if field, code, ok := requestValidationCode(err); ok {
		return http.StatusBadRequest, validationPayload(ValidationError{
			Field:   field,
			Code:    code,
			Message: validationErrorMessage(code),
		})
	}

	switch {
	case errors.Is(err, ledgerdomain.ErrVersionConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "record was modified by another request",
		}
	case errors.Is(err, ledgerdomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: "record is already settled or canceled",
		}
	case errors.Is(err, cashflowdomain.ErrDayExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "cash-flow day already recorded",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func validationPayload(errs ...ValidationError) errorPayload {
	return errorPayload{
		Type:    "validation_error",
		Message: "validation error",
		Errors:  errs,
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// requestValidationCode maps the sentinel request errors of every service to a field and code.
func requestValidationCode(err error) (string, string, bool) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "request", "invalid_request", true
	case errors.Is(err, orgcontext.ErrMissingOrganization),
		errors.Is(err, accountdomain.ErrInvalidOrganization),
		errors.Is(err, invoicedomain.ErrInvalidOrganization),
		errors.Is(err, cashflowdomain.ErrInvalidOrganization),
		errors.Is(err, financedomain.ErrInvalidOrganization):
		return "organization", "missing_organization", true
	case errors.Is(err, accountdomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidID):
		return "id", "invalid_id", true
	case errors.Is(err, accountdomain.ErrInvalidVersion),
		errors.Is(err, invoicedomain.ErrInvalidVersion),
		errors.Is(err, cashflowdomain.ErrInvalidVersion):
		return "expected_version", "invalid_expected_version", true
	case errors.Is(err, pagination.ErrInvalidPageToken):
		return "page_token", "invalid_page_token", true
	default:
		return "", "", false
	}
}

func validationErrorMessage(code string) string {
	switch code {
	case "missing_organization":
		return "X-Org-ID header is required"
	case "invalid_id":
		return "invalid id"
	case "invalid_expected_version":
		return "expected_version must be a positive integer"
	case "invalid_page_token":
		return "invalid page token"
	default:
		return "invalid request"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, cashflowdomain.ErrNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog gives the request logger a low-cardinality error type and code.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "internal", payload.Type
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}
