package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettlementService applies payments to ledger records and tracks cheque clearing.
// Every operation locks the record row for the length of its transaction, so
// two payments against one record never interleave.
type SettlementService struct {
	txScope        TransactionScope
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	opts           Options
	logger         *zap.Logger
	now            func() time.Time
}

// NewSettlementService creates a new SettlementService.
// idempotency may be nil, in which case Idempotency-Key headers are ignored.
func NewSettlementService(
	txScope TransactionScope,
	idempotency shared.IdempotencyStore,
	opts Options,
	logger *zap.Logger,
) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		txScope:     txScope,
		idempotency: idempotency,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SettlementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SettleCash records a cash payment
func (s *SettlementService) SettleCash(ctx context.Context, tenantID, recordID uuid.UUID, req CashPaymentRequest) (*SettlementResponse, error) {
	return s.settle(ctx, tenantID, recordID, ledger.CashPayment{}, req.PaymentFields)
}

// SettleBank records a bank transfer
func (s *SettlementService) SettleBank(ctx context.Context, tenantID, recordID uuid.UUID, req BankPaymentRequest) (*SettlementResponse, error) {
	return s.settle(ctx, tenantID, recordID, ledger.BankPayment{
		AccountNumber: req.AccountNumber,
	}, req.PaymentFields)
}

// SettleCheque records a cheque. The amount counts as settled until the
// cheque bounces or is cancelled.
func (s *SettlementService) SettleCheque(ctx context.Context, tenantID, recordID uuid.UUID, req ChequePaymentRequest) (*SettlementResponse, error) {
	return s.settle(ctx, tenantID, recordID, ledger.ChequePayment{
		ChequeNumber: req.ChequeNumber,
		BankName:     req.BankName,
	}, req.PaymentFields)
}

func (s *SettlementService) settle(ctx context.Context, tenantID, recordID uuid.UUID, instr ledger.PaymentInstruction, fields PaymentFields) (resp *SettlementResponse, err error) {
	if fields.IdempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("settle:%s:%s:%s", tenantID, recordID, fields.IdempotencyKey)
		fresh, markErr := s.idempotency.MarkProcessed(ctx, key, s.opts.IdempotencyTTL)
		if markErr != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", markErr)
		}
		if !fresh {
			return nil, shared.ErrDuplicateSubmission
		}
		defer func() {
			if err == nil {
				return
			}
			if forgetErr := s.idempotency.Forget(ctx, key); forgetErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(forgetErr))
			}
		}()
	}

	paidAt := s.now()
	if fields.PaidAt != nil {
		paidAt = *fields.PaidAt
	}

	var (
		record  *ledger.Record
		payment *ledger.Payment
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.RecordRepo().FindByIDForUpdate(ctx, tenantID, recordID)
		if err != nil {
			return err
		}
		p, err := rec.Settle(instr, fields.Amount, paidAt, fields.Remark)
		if err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, rec); err != nil {
			return err
		}
		record, payment = rec, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("method", string(payment.Method)),
		zap.String("amount", payment.Amount.String()),
		zap.String("status", record.Status().String()),
	)

	publishEvents(ctx, s.eventPublisher, s.logger, record)

	return &SettlementResponse{
		Payment: ToPaymentResponse(payment),
		Record:  ToRecordResponse(record, s.now()),
	}, nil
}

// UpdateChequeStatus clears, bounces or cancels a pending cheque and
// re-derives the owning record's status
func (s *SettlementService) UpdateChequeStatus(ctx context.Context, tenantID, paymentID uuid.UUID, req UpdateChequeStatusRequest) (*SettlementResponse, error) {
	status := ledger.ChequeStatus(req.Status)

	var (
		record  *ledger.Record
		payment *ledger.Payment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.RecordRepo().FindByPaymentIDForUpdate(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		p, err := rec.UpdateChequeStatus(paymentID, status)
		if err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, rec); err != nil {
			return err
		}
		record, payment = rec, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cheque status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("cheque_status", string(status)),
		zap.String("status", record.Status().String()),
	)

	publishEvents(ctx, s.eventPublisher, s.logger, record)

	return &SettlementResponse{
		Payment: ToPaymentResponse(payment),
		Record:  ToRecordResponse(record, s.now()),
	}, nil
}

// ChangeDueDate moves a record's due date
func (s *SettlementService) ChangeDueDate(ctx context.Context, tenantID, recordID uuid.UUID, req ChangeDueDateRequest) (*RecordResponse, error) {
	var record *ledger.Record
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.RecordRepo().FindByIDForUpdate(ctx, tenantID, recordID)
		if err != nil {
			return err
		}
		if err := rec.ChangeDueDate(req.DueDate); err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, rec); err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToRecordResponse(record, s.now())
	return &resp, nil
}
