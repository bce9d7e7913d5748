// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/datatypes"
)

// Invoice bills a client for a subscription plan. Status is the stored state;
// OVERDUE is derived per request.
type Invoice struct {
	ID            snowflake.ID        `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID        `gorm:"not null;index;uniqueIndex:ux_invoices_org_number,priority:1" json:"org_id"`
	InvoiceNumber string              `gorm:"type:varchar(64);not null;uniqueIndex:ux_invoices_org_number,priority:2" json:"invoice_number"`
	Sequence      int64               `gorm:"not null" json:"sequence"`
	ClientName    string              `gorm:"type:text;not null" json:"client_name"`
	PlanName      string              `gorm:"type:varchar(255);not null;default:''" json:"plan_name"`
	PlanPrice     int64               `gorm:"not null;default:0" json:"plan_price"`
	Description   string              `gorm:"type:text;not null" json:"description"`
	Category      string              `gorm:"type:varchar(255);not null;default:''" json:"category"`
	PaymentMethod string              `gorm:"type:varchar(255);not null;default:''" json:"payment_method"`
	InvoiceDate   ledgerdomain.Date   `gorm:"type:date;not null" json:"invoice_date"`
	DueDate       ledgerdomain.Date   `gorm:"type:date;not null" json:"due_date"`
	Amount        int64               `gorm:"not null" json:"amount"`
	Status        ledgerdomain.Status `gorm:"type:varchar(16);not null" json:"stored_status"`
	Version       int64               `gorm:"not null;default:1" json:"version"`
	Metadata      datatypes.JSONMap   `gorm:"not null" json:"metadata,omitempty"`
	CreatedAt     time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// LedgerRecord projects the invoice for the engine. Invoices are always inflows.
func (i Invoice) LedgerRecord() ledgerdomain.Record {
	return ledgerdomain.Record{
		ID:            i.ID.String(),
		Kind:          ledgerdomain.KindInvoice,
		Description:   i.Description,
		Category:      i.Category,
		PaymentMethod: i.PaymentMethod,
		DueDate:       i.DueDate,
		Amount:        i.Amount,
		Status:        i.Status,
		Direction:     ledgerdomain.DirectionReceivable,
		IssueDate:     i.InvoiceDate,
		ClientName:    i.ClientName,
		PlanName:      i.PlanName,
		InvoiceNumber: i.InvoiceNumber,
	}
}

// InvoiceSequence holds the last number issued per tenant. The row is updated
// inside the creating transaction, which serializes concurrent issuers.
type InvoiceSequence struct {
	OrgID     snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null"`
}

func (InvoiceSequence) TableName() string { return "invoice_sequences" }

// InvoiceView is an invoice as shown for one as-of date.
type InvoiceView struct {
	Invoice
	Status ledgerdomain.Status `json:"status"`
}

func NewView(d ledgerdomain.Derived[Invoice]) InvoiceView {
	return InvoiceView{Invoice: d.Item, Status: d.Status}
}

// PlanRevenue is one line of the MRR breakdown.
type PlanRevenue struct {
	PlanName string `json:"plan_name"`
	Price    int64  `json:"price"`
	Active   int    `json:"active"`
	Amount   int64  `json:"amount"`
}
