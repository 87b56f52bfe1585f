package ledger

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/ledger"
)

// TransactionScope provides transactional access to the stock and ledger repositories.
// Everything done through the repositories handed to fn commits or rolls back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to one transaction.
//
// Aggregate boundary notes:
//   - ProductRepo: stock moves through the conditional WithdrawStock/ReceiveStock
//     updates, never by saving a product loaded earlier in the request.
//   - RecordRepo: ledger records are created once, then only their payments,
//     settled amount and due date change through SaveWithLock.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	RecordRepo() ledger.RecordRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful for tests where the repositories are mocks.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	recordRepo  ledger.RecordRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, recordRepo ledger.RecordRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, recordRepo: recordRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// RecordRepo returns the ledger record repository
func (s *NoOpTransactionScope) RecordRepo() ledger.RecordRepository {
	return s.recordRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
