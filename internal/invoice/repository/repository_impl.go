package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, org_id, invoice_number, sequence, client_name, plan_name, plan_price, description, category, payment_method, invoice_date, due_date, amount, status, version, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.OrgID,
		invoice.InvoiceNumber,
		invoice.Sequence,
		invoice.ClientName,
		invoice.PlanName,
		invoice.PlanPrice,
		invoice.Description,
		invoice.Category,
		invoice.PaymentMethod,
		invoice.InvoiceDate,
		invoice.DueDate,
		invoice.Amount,
		invoice.Status,
		invoice.Version,
		invoice.Metadata,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return &invoices[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("due_date asc, sequence asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, t domain.Transition) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, version = version + 1, updated_at = ?
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

func (r *repo) NextSequence(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, at time.Time) (int64, error) {
	seed := domain.InvoiceSequence{OrgID: orgID, LastValue: 0, UpdatedAt: at}
	if err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return 0, err
	}

	// The UPDATE takes the row lock, so the value read below belongs to this transaction.
	if err := tx.WithContext(ctx).Exec(
		`UPDATE invoice_sequences SET last_value = last_value + 1, updated_at = ? WHERE org_id = ?`,
		at,
		orgID,
	).Error; err != nil {
		return 0, err
	}

	var next int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT last_value FROM invoice_sequences WHERE org_id = ?`,
		orgID,
	).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
