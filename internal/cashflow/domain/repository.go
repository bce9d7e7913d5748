package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/gorm"
)

// Append moves a day's closing balance and adds one transaction, guarded by version.
type Append struct {
	OrgID           snowflake.ID
	DayID           snowflake.ID
	ExpectedVersion int64
	ClosingBalance  int64
	Transaction     Transaction
	At              time.Time
}

type Repository interface {
	InsertDay(ctx context.Context, tx *gorm.DB, day *Day) error
	FindDay(ctx context.Context, db *gorm.DB, orgID snowflake.ID, date ledgerdomain.Date) (*Day, error)
	// PreviousDay returns the latest stored day strictly before date.
	PreviousDay(ctx context.Context, db *gorm.DB, orgID snowflake.ID, date ledgerdomain.Date) (*Day, error)
	// ListDays returns days in [from, to]; a zero bound is open.
	ListDays(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to ledgerdomain.Date) ([]Day, error)
	AppendTransaction(ctx context.Context, tx *gorm.DB, a Append) (bool, error)
	ListOrgIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
}
