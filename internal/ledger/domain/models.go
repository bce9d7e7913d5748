// Package domain holds the record model shared by every ledger screen: statuses,
// directions, the engine-facing record projection and cash-flow day values.
package domain

import "strings"

// Status is the lifecycle state of a money record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusReceived Status = "RECEIVED"
	StatusOverdue  Status = "OVERDUE"
	StatusCanceled Status = "CANCELED"
)

// IsKnown reports whether s is one of the five lifecycle values.
func (s Status) IsKnown() bool {
	switch s {
	case StatusPending, StatusPaid, StatusReceived, StatusOverdue, StatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether derivation must leave s untouched.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusReceived, StatusCanceled:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes user input; ok is false for unknown values.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.IsKnown()
}

// Direction distinguishes outflows from inflows.
type Direction string

const (
	DirectionPayable    Direction = "PAYABLE"
	DirectionReceivable Direction = "RECEIVABLE"
)

func (d Direction) IsKnown() bool {
	return d == DirectionPayable || d == DirectionReceivable
}

// ParseDirection normalizes user input; ok is false for unknown values.
func ParseDirection(raw string) (Direction, bool) {
	d := Direction(strings.ToUpper(strings.TrimSpace(raw)))
	return d, d.IsKnown()
}

// SettledStatus is the terminal status reached when a record of this direction is settled.
func (d Direction) SettledStatus() Status {
	if d == DirectionReceivable {
		return StatusReceived
	}
	return StatusPaid
}

// RecordKind tags where a record came from.
type RecordKind string

const (
	KindAccount RecordKind = "account"
	KindInvoice RecordKind = "invoice"
)

// Record is the engine's read-only projection of an account or invoice.
type Record struct {
	ID            string
	Kind          RecordKind
	Description   string
	Category      string
	PaymentMethod string
	DueDate       Date
	Amount        int64
	Status        Status
	Direction     Direction

	// Invoice-only fields; empty for accounts.
	IssueDate     Date
	ClientName    string
	PlanName      string
	InvoiceNumber string
}

// MoneyRecord is implemented by every stored record the engine can read.
type MoneyRecord interface {
	LedgerRecord() Record
}

// LedgerRecord lets a bare Record flow through the engine.
func (r Record) LedgerRecord() Record { return r }

// Derived pairs a record with the status computed for one as-of date.
type Derived[T MoneyRecord] struct {
	Item   T
	Status Status
}

// Plan is a subscription plan of the billing catalog; Price is in minor units.
type Plan struct {
	Name  string
	Price int64
}
