package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when LedgerMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

var (
	attrTenantID     = attribute.Key("tenant_id")
	attrKind         = attribute.Key("ledger.kind")
	attrMethod       = attribute.Key("payment.method")
	attrChequeStatus = attribute.Key("cheque.status")
	attrFromStatus   = attribute.Key("status.from")
	attrToStatus     = attribute.Key("status.to")
)

// LedgerMetrics records ledger business measurements. Amounts are exported
// as float64 counters; the ledger itself never rounds.
type LedgerMetrics struct {
	committed       metric.Int64Counter
	committedAmount metric.Float64Counter
	payments        metric.Int64Counter
	paymentAmount   metric.Float64Counter
	chequeOutcomes  metric.Int64Counter
	chequeAmount    metric.Float64Counter
	statusChanges   metric.Int64Counter
	stockConflicts  metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error
	if m.committed, err = meter.Int64Counter("ledger_records_committed_total",
		metric.WithDescription("Ledger records committed"), metric.WithUnit("{records}")); err != nil {
		return nil, wrapInstrumentErr("ledger_records_committed_total", err)
	}
	if m.committedAmount, err = meter.Float64Counter("ledger_committed_amount_total",
		metric.WithDescription("Sum of committed record totals"), metric.WithUnit("{currency}")); err != nil {
		return nil, wrapInstrumentErr("ledger_committed_amount_total", err)
	}
	if m.payments, err = meter.Int64Counter("ledger_payments_total",
		metric.WithDescription("Payments recorded against ledger records"), metric.WithUnit("{payments}")); err != nil {
		return nil, wrapInstrumentErr("ledger_payments_total", err)
	}
	if m.paymentAmount, err = meter.Float64Counter("ledger_payment_amount_total",
		metric.WithDescription("Sum of recorded payment amounts"), metric.WithUnit("{currency}")); err != nil {
		return nil, wrapInstrumentErr("ledger_payment_amount_total", err)
	}
	if m.chequeOutcomes, err = meter.Int64Counter("ledger_cheque_outcomes_total",
		metric.WithDescription("Cheques that left the pending state"), metric.WithUnit("{cheques}")); err != nil {
		return nil, wrapInstrumentErr("ledger_cheque_outcomes_total", err)
	}
	if m.chequeAmount, err = meter.Float64Counter("ledger_cheque_outcome_amount_total",
		metric.WithDescription("Sum of cheque amounts by outcome"), metric.WithUnit("{currency}")); err != nil {
		return nil, wrapInstrumentErr("ledger_cheque_outcome_amount_total", err)
	}
	if m.statusChanges, err = meter.Int64Counter("ledger_status_changes_total",
		metric.WithDescription("Derived status transitions"), metric.WithUnit("{transitions}")); err != nil {
		return nil, wrapInstrumentErr("ledger_status_changes_total", err)
	}
	if m.stockConflicts, err = meter.Int64Counter("ledger_stock_conflicts_total",
		metric.WithDescription("Commits rejected because stock changed underneath them"), metric.WithUnit("{commits}")); err != nil {
		return nil, wrapInstrumentErr("ledger_stock_conflicts_total", err)
	}
	return m, nil
}

func wrapInstrumentErr(name string, err error) error {
	return fmt.Errorf("failed to create instrument %s: %w", name, err)
}

// RecordCommitted counts a committed record and its total
func (m *LedgerMetrics) RecordCommitted(ctx context.Context, tenantID uuid.UUID, kind string, total decimal.Decimal) {
	attrs := metric.WithAttributes(attrTenantID.String(tenantID.String()), attrKind.String(kind))
	m.committed.Add(ctx, 1, attrs)
	m.committedAmount.Add(ctx, total.InexactFloat64(), attrs)
}

// RecordPayment counts a settlement
func (m *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, kind, method string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(attrTenantID.String(tenantID.String()), attrKind.String(kind), attrMethod.String(method))
	m.payments.Add(ctx, 1, attrs)
	m.paymentAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// RecordChequeOutcome counts a cheque leaving the pending state
func (m *LedgerMetrics) RecordChequeOutcome(ctx context.Context, tenantID uuid.UUID, status string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(attrTenantID.String(tenantID.String()), attrChequeStatus.String(status))
	m.chequeOutcomes.Add(ctx, 1, attrs)
	m.chequeAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// RecordStatusChange counts a derived status transition
func (m *LedgerMetrics) RecordStatusChange(ctx context.Context, tenantID uuid.UUID, kind, from, to string) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(
		attrTenantID.String(tenantID.String()),
		attrKind.String(kind),
		attrFromStatus.String(from),
		attrToStatus.String(to),
	))
}

// RecordStockConflict counts a commit that lost a stock race
func (m *LedgerMetrics) RecordStockConflict(ctx context.Context, tenantID uuid.UUID, kind string) {
	m.stockConflicts.Add(ctx, 1, metric.WithAttributes(attrTenantID.String(tenantID.String()), attrKind.String(kind)))
}
