package domain

import (
	"regexp"
	"strings"
)

var transactionTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidateRecord checks the ingestion rules shared by accounts and invoices.
// It never repairs a record.
func ValidateRecord(r Record) error {
	if strings.TrimSpace(r.Description) == "" {
		return NewValidationError("description", "required", "description is required")
	}
	if r.DueDate.IsZero() {
		return NewValidationError("due_date", "required", "due date is required")
	}
	if r.Amount < 0 {
		return NewValidationError("amount", "negative_amount", "amount must not be negative")
	}
	if !r.Status.IsKnown() {
		return NewValidationError("status", "unknown_status", "unknown status "+string(r.Status))
	}
	if r.Status == StatusOverdue {
		return NewValidationError("status", "derived_status", "overdue is derived from the due date and cannot be stored")
	}
	if !r.Direction.IsKnown() {
		return NewValidationError("direction", "unknown_direction", "unknown direction "+string(r.Direction))
	}
	switch {
	case r.Direction == DirectionPayable && r.Status == StatusReceived,
		r.Direction == DirectionReceivable && r.Status == StatusPaid && r.Kind == KindAccount,
		r.Kind == KindInvoice && r.Status == StatusReceived:
		return NewValidationError("status", "status_direction_mismatch", "status "+string(r.Status)+" does not apply to "+string(r.Direction)+" records")
	}
	if r.Kind == KindInvoice {
		if !r.IssueDate.IsZero() && r.IssueDate.After(r.DueDate) {
			return NewValidationError("invoice_date", "after_due_date", "invoice date must not be after the due date")
		}
		if strings.TrimSpace(r.ClientName) == "" {
			return NewValidationError("client_name", "required", "client name is required")
		}
	}
	return nil
}

// ValidateTransaction checks a single cash-flow transaction.
func ValidateTransaction(t Transaction) error {
	if !transactionTimeRe.MatchString(strings.TrimSpace(t.Time)) {
		return NewValidationError("time", "invalid_time", "time must be HH:MM")
	}
	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description", "required", "description is required")
	}
	if t.Amount < 0 {
		return NewValidationError("amount", "negative_amount", "amount must not be negative")
	}
	if !t.Type.IsKnown() {
		return NewValidationError("type", "unknown_type", "unknown transaction type "+string(t.Type))
	}
	return nil
}
