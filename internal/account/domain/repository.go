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
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, scope Scope) (*Account, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, scope Scope) ([]Account, error)
	// Transition reports whether the row was updated.
	Transition(ctx context.Context, db *gorm.DB, t Transition) (bool, error)
}
