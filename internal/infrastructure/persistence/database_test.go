package persistence

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDatabase_MissingTables(t *testing.T) {
	empty, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	db, err := wrap(empty, &config.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	missing, err := db.MissingTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"products", "rate_rules", "counterparties", "ledger_records", "ledger_lines", "ledger_payments"}, missing)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestDatabase_MissingTables_AfterMigrate(t *testing.T) {
	migrated := newSQLiteDB(t)
	db, err := wrap(migrated, nil)
	require.NoError(t, err)

	missing, err := db.MissingTables()
	require.NoError(t, err)
	assert.Empty(t, missing)
}
