package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status predicates over stored amounts. They mirror ledger.DeriveStatus and
// ledger.IsOverdue so filters and aggregates agree with what responses show.
const (
	predicateSettled          = "amount_settled >= total"
	predicatePending          = "amount_settled = 0 AND total > 0"
	predicatePartiallySettled = "amount_settled > 0 AND amount_settled < total"
	predicateOpen             = "amount_settled < total"
	predicateOverdue          = "amount_settled < total AND due_date < ?"
)

// GormRecordRepository implements ledger.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// FindByIDForTenant loads a record with its lines and payments
func (r *GormRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Record, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads a record and holds a row lock on it until the
// surrounding transaction ends
func (r *GormRecordRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Record, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

// FindByPaymentIDForUpdate locks and loads the record that owns a payment
func (r *GormRecordRepository) FindByPaymentIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.Record, error) {
	var payment models.PaymentModel
	if err := r.db.WithContext(ctx).
		Select("record_id").
		Where("tenant_id = ? AND id = ?", tenantID, paymentID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("payment", paymentID)
		}
		return nil, err
	}
	return r.FindByIDForUpdate(ctx, tenantID, payment.RecordID)
}

func (r *GormRecordRepository) findOne(ctx context.Context, query *gorm.DB, tenantID, id uuid.UUID) (*ledger.Record, error) {
	var model models.RecordModel
	if err := query.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ledger record", id)
		}
		return nil, err
	}
	rows := []models.RecordModel{model}
	if err := r.loadChildren(ctx, rows); err != nil {
		return nil, err
	}
	return rows[0].ToDomain(), nil
}

// FindAllForTenant lists records matching the filter, with lines and payments
func (r *GormRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.RecordFilter) ([]ledger.Record, error) {
	var rows []models.RecordModel
	query := applyPaging(r.filteredRecords(ctx, tenantID, filter), filter.Filter, RecordSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, rows); err != nil {
		return nil, err
	}
	records := make([]ledger.Record, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// CountForTenant counts records matching the filter
func (r *GormRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.RecordFilter) (int64, error) {
	var count int64
	if err := r.filteredRecords(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPayments lists payments joined with the record they settle
func (r *GormRecordRepository) FindPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.PaymentEntry, error) {
	field := ValidateSortField(filter.OrderBy, PaymentSortFields, "paid_at")
	query := r.filteredPayments(ctx, tenantID, filter).
		Select("p.*, r.number AS record_number, r.kind AS kind, r.counterparty_id AS counterparty_id").
		Order("p." + field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.PaymentEntryModel
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.PaymentEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// CountPayments counts payments matching the filter
func (r *GormRecordRepository) CountPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) (int64, error) {
	var count int64
	if err := r.filteredPayments(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new record with its lines and any payments it carries
func (r *GormRecordRepository) Create(ctx context.Context, record *ledger.Record) error {
	model := models.RecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	for i := range record.Lines {
		record.Lines[i].ID = model.Lines[i].ID
	}
	return nil
}

// SaveWithLock writes the settled amount, due date and payments of a record.
// The update only applies when the stored version is Version-1; otherwise
// another writer got there first and ErrConcurrencyConflict is returned.
// Lines and totals are immutable after Create and are not written.
func (r *GormRecordRepository) SaveWithLock(ctx context.Context, record *ledger.Record) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.RecordModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", record.ID, record.TenantID, record.Version-1).
		Updates(map[string]any{
			"amount_settled": record.AmountSettled,
			"due_date":       record.DueDate,
			"version":        record.Version,
			"updated_at":     record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Ledger record %s was modified by another transaction", record.ID)
	}

	if len(record.Payments) == 0 {
		return nil
	}
	payments := make([]models.PaymentModel, len(record.Payments))
	for i := range record.Payments {
		payments[i] = models.PaymentModelFromDomain(&record.Payments[i])
	}
	// Payments are append-only; an existing one can only change cheque status.
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cheque_status", "updated_at"}),
	}).Create(&payments).Error
}

type balanceRow struct {
	OpenCount      int64
	Total          decimal.Decimal
	Settled        decimal.Decimal
	OverdueCount   int64
	OverdueBalance decimal.Decimal
}

// SummarizeOpen sums the open records of one kind in a single aggregate query
func (r *GormRecordRepository) SummarizeOpen(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, now time.Time) (*ledger.BalanceSummary, error) {
	var row balanceRow
	err := r.db.WithContext(ctx).Model(&models.RecordModel{}).
		Select(`COUNT(*) AS open_count,
			COALESCE(SUM(total), 0) AS total,
			COALESCE(SUM(amount_settled), 0) AS settled,
			COALESCE(SUM(CASE WHEN due_date < ? THEN 1 ELSE 0 END), 0) AS overdue_count,
			COALESCE(SUM(CASE WHEN due_date < ? THEN total - amount_settled ELSE 0 END), 0) AS overdue_balance`, now, now).
		Where("tenant_id = ? AND kind = ?", tenantID, kind).
		Where(predicateOpen).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &ledger.BalanceSummary{
		Kind:           kind,
		OpenCount:      row.OpenCount,
		Total:          row.Total,
		Settled:        row.Settled,
		Balance:        row.Total.Sub(row.Settled),
		OverdueCount:   row.OverdueCount,
		OverdueBalance: row.OverdueBalance,
	}, nil
}

// ReturnedQuantities sums line quantities per product over every return
// that references the origin record
func (r *GormRecordRepository) ReturnedQuantities(ctx context.Context, tenantID, originID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ProductID uuid.UUID
		Quantity  int64
	}
	err := r.db.WithContext(ctx).Table("ledger_lines AS l").
		Select("l.product_id AS product_id, SUM(l.quantity) AS quantity").
		Joins("JOIN ledger_records r ON r.id = l.record_id").
		Where("r.tenant_id = ? AND r.origin_id = ?", tenantID, originID).
		Group("l.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Quantity
	}
	return out, nil
}

// ExistsOpenWithProduct reports whether an unsettled record has a line for the product
func (r *GormRecordRepository) ExistsOpenWithProduct(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("ledger_records AS r").
		Joins("JOIN ledger_lines l ON l.record_id = r.id").
		Where("r.tenant_id = ? AND l.product_id = ?", tenantID, productID).
		Where("r.amount_settled < r.total").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRecordRepository) filteredRecords(ctx context.Context, tenantID uuid.UUID, filter ledger.RecordFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.RecordModel{}).Where("tenant_id = ?", tenantID)
	if len(filter.Kinds) > 0 {
		query = query.Where("kind IN ?", filter.Kinds)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	switch filter.Status {
	case ledger.StatusSettled:
		query = query.Where(predicateSettled)
	case ledger.StatusPending:
		query = query.Where(predicatePending)
	case ledger.StatusPartiallySettled:
		query = query.Where(predicatePartiallySettled)
	}
	if filter.OpenOnly {
		query = query.Where(predicateOpen)
	}
	if filter.OverdueAt != nil {
		query = query.Where(predicateOverdue, *filter.OverdueAt)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(number) LIKE ? OR LOWER(counterparty_name) LIKE ?)", pattern, pattern)
	}
	return query
}

func (r *GormRecordRepository) filteredPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Table("ledger_payments AS p").
		Joins("JOIN ledger_records r ON r.id = p.record_id").
		Where("p.tenant_id = ?", tenantID)

	kinds := filter.Kinds
	if len(kinds) == 0 && filter.Side != "" {
		kinds = ledger.KindsOnSide(filter.Side)
	}
	if len(kinds) > 0 {
		query = query.Where("r.kind IN ?", kinds)
	}
	if filter.Method != "" {
		query = query.Where("p.method = ?", filter.Method)
	}
	if filter.ChequeStatus != "" {
		query = query.Where("p.cheque_status = ?", filter.ChequeStatus)
	}
	if filter.From != nil {
		query = query.Where("p.paid_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("p.paid_at <= ?", *filter.To)
	}
	return query
}

// loadChildren attaches lines and payments to the given records with one
// query per child table
func (r *GormRecordRepository) loadChildren(ctx context.Context, rows []models.RecordModel) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
		index[rows[i].ID] = i
	}

	var lines []models.LineModel
	if err := r.db.WithContext(ctx).
		Where("record_id IN ?", ids).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return err
	}
	for _, l := range lines {
		i := index[l.RecordID]
		rows[i].Lines = append(rows[i].Lines, l)
	}

	var payments []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("record_id IN ?", ids).
		Order("paid_at ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return err
	}
	for _, p := range payments {
		i := index[p.RecordID]
		rows[i].Payments = append(rows[i].Payments, p)
	}
	return nil
}

var _ ledger.RecordRepository = (*GormRecordRepository)(nil)
