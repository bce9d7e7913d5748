// Package domain contains persistence models for the daily cash-flow ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
)

// Day is one stored cash-flow day. ClosingBalance is kept equal to
// OpeningBalance plus the signed transaction sum on every write.
type Day struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID      `gorm:"not null;uniqueIndex:ux_cashflow_days_org_date,priority:1" json:"org_id"`
	Date           ledgerdomain.Date `gorm:"type:date;not null;uniqueIndex:ux_cashflow_days_org_date,priority:2" json:"date"`
	OpeningBalance int64             `gorm:"not null" json:"opening_balance"`
	ClosingBalance int64             `gorm:"not null" json:"closing_balance"`
	Version        int64             `gorm:"not null;default:1" json:"version"`
	Transactions   []Transaction     `gorm:"foreignKey:DayID" json:"transactions"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
}

func (Day) TableName() string { return "cashflow_days" }

// Transaction is one movement of a stored day. Position keeps insertion order
// among transactions sharing the same time.
type Transaction struct {
	ID          snowflake.ID                 `gorm:"primaryKey" json:"id"`
	DayID       snowflake.ID                 `gorm:"not null;index" json:"-"`
	OrgID       snowflake.ID                 `gorm:"not null;index" json:"-"`
	Position    int                          `gorm:"not null" json:"position"`
	Time        string                       `gorm:"column:txn_time;type:varchar(5);not null" json:"time"`
	Description string                       `gorm:"type:text;not null" json:"description"`
	Amount      int64                        `gorm:"not null" json:"amount"`
	Type        ledgerdomain.TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	Method      string                       `gorm:"type:varchar(255);not null;default:''" json:"method"`
	CreatedAt   time.Time                    `gorm:"not null" json:"created_at"`
}

func (Transaction) TableName() string { return "cashflow_transactions" }

func (t Transaction) Ledger() ledgerdomain.Transaction {
	return ledgerdomain.Transaction{
		Time:        t.Time,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Method:      t.Method,
	}
}

// Ledger projects the stored day for the engine.
func (d Day) Ledger() ledgerdomain.Day {
	txns := make([]ledgerdomain.Transaction, 0, len(d.Transactions))
	for _, t := range d.Transactions {
		txns = append(txns, t.Ledger())
	}
	return ledgerdomain.Day{
		Date:           d.Date,
		OpeningBalance: d.OpeningBalance,
		ClosingBalance: d.ClosingBalance,
		Transactions:   txns,
	}
}

// DayView is a stored day with its computed summary.
type DayView struct {
	Day
	Summary engine.DaySummary `json:"summary"`
}

func NewView(d Day) DayView {
	return DayView{Day: d, Summary: engine.Summarize(d.Ledger())}
}

// Inconsistency is one day that failed verification.
type Inconsistency struct {
	Date       ledgerdomain.Date `json:"date"`
	Expected   int64             `json:"expected_delta"`
	Actual     int64             `json:"actual_delta"`
	Difference int64             `json:"difference"`
}

// VerifyReport is the outcome of checking a range of stored days.
type VerifyReport struct {
	From            ledgerdomain.Date `json:"from"`
	To              ledgerdomain.Date `json:"to"`
	Checked         int               `json:"checked"`
	Inconsistencies []Inconsistency   `json:"inconsistencies"`
}

func (r VerifyReport) Consistent() bool { return len(r.Inconsistencies) == 0 }
