// Package events publishes ledger state changes for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	AccountSettled                = "account.settled"
	AccountCanceled               = "account.canceled"
	InvoicePaid                   = "invoice.paid"
	InvoiceCanceled               = "invoice.canceled"
	CashflowTransactionRecorded   = "cashflow.transaction_recorded"
	CashflowInconsistencyDetected = "cashflow.inconsistency_detected"
)

// Event is the envelope published for every state change. Type doubles as the routing key.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OrgID      snowflake.ID   `json:"org_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType string, orgID snowflake.ID, at time.Time, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrgID:      orgID,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Publish is called after the state change has been
// committed, so a failed publish never rolls back the ledger.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
