package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoices.number")))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsDuplicateKeyErr(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)

	d, err := Dialect(config.Config{DBType: "sqlite", DBName: "ledger.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestOpenInMemoryTranslatesUniqueViolation(t *testing.T) {
	conn, err := OpenInMemory(t.Name())
	require.NoError(t, err)

	type row struct {
		ID   int64  `gorm:"primaryKey"`
		Code string `gorm:"uniqueIndex"`
	}
	require.NoError(t, conn.AutoMigrate(&row{}))
	require.NoError(t, conn.Create(&row{ID: 1, Code: "a"}).Error)

	err = conn.Create(&row{ID: 2, Code: "a"}).Error
	assert.True(t, IsDuplicateKeyErr(err))
}
