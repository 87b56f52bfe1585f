package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with every table migrated.
// One connection keeps the in-memory database alive and serializes writers
// the way row locks would.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockDB opens a postgres-dialect GORM DB on top of sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string, price int64, onHand int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, code, "Product "+code, decimal.NewFromInt(price), onHand)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func seedCounterparty(t *testing.T, db *gorm.DB, tenantID uuid.UUID, role ledger.Role) *ledger.Counterparty {
	t.Helper()
	c, err := ledger.NewCounterparty(tenantID, "Acme "+string(role), role, "", "")
	require.NoError(t, err)
	require.NoError(t, NewGormCounterpartyRepository(db).Save(context.Background(), c))
	return c
}

// newRecord builds a record of kind with one line per product at the product's price
func newRecord(t *testing.T, tenantID uuid.UUID, kind ledger.Kind, counterparty *ledger.Counterparty, due time.Time, lines map[*catalog.Product]int64) *ledger.Record {
	t.Helper()

	in := ledger.NewRecordInput{
		TenantID:         tenantID,
		Kind:             kind,
		CounterpartyID:   counterparty.ID,
		CounterpartyName: counterparty.Name,
		DueDate:          due,
		Subtotal:         decimal.Zero,
	}
	for p, qty := range lines {
		in.Lines = append(in.Lines, ledger.Line{
			ProductID:   p.ID,
			ProductCode: p.Code,
			ProductName: p.Name,
			Quantity:    qty,
			UnitPrice:   p.UnitPrice,
		})
		in.Subtotal = in.Subtotal.Add(p.UnitPrice.Mul(decimal.NewFromInt(qty)))
	}
	rec, err := ledger.NewRecord(in)
	require.NoError(t, err)
	return rec
}
