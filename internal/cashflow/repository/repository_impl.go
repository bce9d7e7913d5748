package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/cashflow/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func orderedTransactions(db *gorm.DB) *gorm.DB {
	return db.Order("txn_time asc, position asc")
}

func (r *repo) InsertDay(ctx context.Context, tx *gorm.DB, day *domain.Day) error {
	return tx.WithContext(ctx).Create(day).Error
}

func (r *repo) FindDay(ctx context.Context, db *gorm.DB, orgID snowflake.ID, date ledgerdomain.Date) (*domain.Day, error) {
	var days []domain.Day
	err := db.WithContext(ctx).
		Preload("Transactions", orderedTransactions).
		Where("org_id = ? AND date = ?", orgID, date).
		Limit(1).
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}
	return &days[0], nil
}

func (r *repo) PreviousDay(ctx context.Context, db *gorm.DB, orgID snowflake.ID, date ledgerdomain.Date) (*domain.Day, error) {
	var days []domain.Day
	err := db.WithContext(ctx).
		Where("org_id = ? AND date < ?", orgID, date).
		Order("date desc").
		Limit(1).
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}
	return &days[0], nil
}

func (r *repo) ListDays(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to ledgerdomain.Date) ([]domain.Day, error) {
	stmt := db.WithContext(ctx).
		Preload("Transactions", orderedTransactions).
		Where("org_id = ?", orgID)
	if !from.IsZero() {
		stmt = stmt.Where("date >= ?", from)
	}
	if !to.IsZero() {
		stmt = stmt.Where("date <= ?", to)
	}

	var days []domain.Day
	if err := stmt.Order("date asc").Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

func (r *repo) AppendTransaction(ctx context.Context, tx *gorm.DB, a domain.Append) (bool, error) {
	res := tx.WithContext(ctx).Exec(
		`UPDATE cashflow_days SET closing_balance = ?, version = version + 1, updated_at = ?
		 WHERE org_id = ? AND id = ? AND version = ?`,
		a.ClosingBalance,
		a.At,
		a.OrgID,
		a.DayID,
		a.ExpectedVersion,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}

	txn := a.Transaction
	if err := tx.WithContext(ctx).Create(&txn).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) ListOrgIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.Day{}).
		Distinct("org_id").
		Order("org_id asc").
		Pluck("org_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
