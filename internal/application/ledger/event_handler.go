package ledger

import (
	"context"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerEventHandler turns ledger events into logs and business metrics.
// Notification and export tooling subscribe to the same events.
type LedgerEventHandler struct {
	metrics Metrics
	logger  *zap.Logger
}

// NewLedgerEventHandler creates a new LedgerEventHandler. metrics may be nil.
func NewLedgerEventHandler(metrics Metrics, logger *zap.Logger) *LedgerEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerEventHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerEventHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeRecordCommitted,
		ledger.EventTypePaymentRecorded,
		ledger.EventTypeChequeStatusChanged,
		ledger.EventTypeStatusChanged,
	}
}

// Handle processes one ledger event
func (h *LedgerEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.RecordCommittedEvent:
		if h.metrics != nil {
			h.metrics.RecordCommitted(ctx, e.TenantID(), e.Kind.String(), e.Total)
		}
	case *ledger.PaymentRecordedEvent:
		if h.metrics != nil {
			h.metrics.RecordPayment(ctx, e.TenantID(), e.Kind.String(), string(e.Method), e.Amount)
		}
	case *ledger.ChequeStatusChangedEvent:
		if e.NewStatus.Excludes() {
			h.logger.Warn("cheque no longer counts towards settlement",
				zap.String("record_id", e.RecordID.String()),
				zap.String("payment_id", e.PaymentID.String()),
				zap.String("cheque_status", string(e.NewStatus)),
				zap.String("amount", e.Amount.String()),
			)
		}
		if h.metrics != nil {
			h.metrics.RecordChequeOutcome(ctx, e.TenantID(), string(e.NewStatus), e.Amount)
		}
	case *ledger.StatusChangedEvent:
		h.logger.Info("ledger record status changed",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("record_id", e.RecordID.String()),
			zap.String("number", e.Number),
			zap.String("from", e.OldStatus.String()),
			zap.String("to", e.NewStatus.String()),
			zap.String("amount_settled", e.AmountSettled.String()),
			zap.String("total", e.Total.String()),
		)
		if h.metrics != nil {
			h.metrics.RecordStatusChange(ctx, e.TenantID(), e.Kind.String(), e.OldStatus.String(), e.NewStatus.String())
		}
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*LedgerEventHandler)(nil)
