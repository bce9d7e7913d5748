package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/datatypes"
)

// Scope separates the platform's own payables from tenant bookkeeping.
type Scope string

const (
	ScopePlatform Scope = "PLATFORM"
	ScopeTenant   Scope = "TENANT"
)

// Account is a payable or receivable bill. Status holds the stored lifecycle
// state; OVERDUE never reaches this table.
type Account struct {
	ID            snowflake.ID           `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID           `gorm:"not null;index:ix_accounts_org_scope,priority:1" json:"org_id"`
	Scope         Scope                  `gorm:"type:varchar(16);not null;index:ix_accounts_org_scope,priority:2" json:"scope"`
	Description   string                 `gorm:"type:text;not null" json:"description"`
	Category      string                 `gorm:"type:varchar(255);not null;default:''" json:"category"`
	PaymentMethod string                 `gorm:"type:varchar(255);not null;default:''" json:"payment_method"`
	DueDate       ledgerdomain.Date      `gorm:"type:date;not null" json:"due_date"`
	Amount        int64                  `gorm:"not null" json:"amount"`
	Status        ledgerdomain.Status    `gorm:"type:varchar(16);not null" json:"stored_status"`
	Direction     ledgerdomain.Direction `gorm:"type:varchar(16);not null" json:"direction"`
	Version       int64                  `gorm:"not null;default:1" json:"version"`
	Metadata      datatypes.JSONMap      `gorm:"not null" json:"metadata,omitempty"`
	CreatedAt     time.Time              `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time              `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// LedgerRecord projects the account for the engine.
func (a Account) LedgerRecord() ledgerdomain.Record {
	return ledgerdomain.Record{
		ID:            a.ID.String(),
		Kind:          ledgerdomain.KindAccount,
		Description:   a.Description,
		Category:      a.Category,
		PaymentMethod: a.PaymentMethod,
		DueDate:       a.DueDate,
		Amount:        a.Amount,
		Status:        a.Status,
		Direction:     a.Direction,
	}
}

// AccountView is an account as shown for one as-of date.
type AccountView struct {
	Account
	Status ledgerdomain.Status `json:"status"`
}

func NewView(d ledgerdomain.Derived[Account]) AccountView {
	return AccountView{Account: d.Item, Status: d.Status}
}
