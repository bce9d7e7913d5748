package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/gorm"
)

// Transition is a compare-and-swap on (version, PENDING).
type Transition struct {
	OrgID           snowflake.ID
	ID              snowflake.ID
	ExpectedVersion int64
	To              ledgerdomain.Status
	At              time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Invoice, error)
	Transition(ctx context.Context, db *gorm.DB, t Transition) (bool, error)
	// NextSequence must run inside a transaction; the row stays locked until commit.
	NextSequence(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, at time.Time) (int64, error)
}
