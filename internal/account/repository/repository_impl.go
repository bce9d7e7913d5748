package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/account/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (id, org_id, scope, description, category, payment_method, due_date, amount, status, direction, version, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OrgID,
		account.Scope,
		account.Description,
		account.Category,
		account.PaymentMethod,
		account.DueDate,
		account.Amount,
		account.Status,
		account.Direction,
		account.Version,
		account.Metadata,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, scope domain.Scope) (*domain.Account, error) {
	var accounts []domain.Account
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ? AND scope = ?", orgID, id, scope).
		Limit(1).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, scope domain.Scope) ([]domain.Account, error) {
	var accounts []domain.Account
	err := db.WithContext(ctx).
		Where("org_id = ? AND scope = ?", orgID, scope).
		Order("due_date asc, id asc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, t domain.Transition) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE accounts SET status = ?, version = version + 1, updated_at = ?
		 WHERE org_id = ? AND id = ? AND version = ? AND status = ?`,
		t.To,
		t.At,
		t.OrgID,
		t.ID,
		t.ExpectedVersion,
		ledgerdomain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
