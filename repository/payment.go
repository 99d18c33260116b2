package repository

import (
	"context"
	"errors"
	"laundry_service/apperror"
	"laundry_service/constants"
	"laundry_service/model"
	"time"

	"gorm.io/gorm"
)

var ErrOpenTransactionExists = errors.New("order already has an open payment transaction")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create inserts a new transaction. Open transactions carry OpenOrderId, whose unique
// index rejects a second open transaction for the same order.
func (r *PaymentRepository) Create(ctx context.Context, txn *model.PaymentTransaction) error {
	if txn.OrderId != nil && (txn.Status == constants.TXN_PENDING || txn.Status == constants.TXN_PROCESSING) {
		id := *txn.OrderId
		txn.OpenOrderId = &id
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		if isUniqueViolation(err) && txn.OpenOrderId != nil {
			return ErrOpenTransactionExists
		}
		if isUniqueViolation(err) {
			return apperror.NewConflict("transaction id already exists", err)
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) findOne(ctx context.Context, query string, args ...any) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	if err := r.db.WithContext(ctx).Where(query, args...).First(&txn).Error; err != nil {
		return nil, notFound(err, "transaction not found")
	}
	return &txn, nil
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.PaymentTransaction, error) {
	return r.findOne(ctx, "transaction_id = ?", transactionID)
}

func (r *PaymentRepository) FindForUser(ctx context.Context, transactionID string, userID uint) (*model.PaymentTransaction, error) {
	return r.findOne(ctx, "transaction_id = ? AND user_id = ?", transactionID, userID)
}

func (r *PaymentRepository) FindBySourceID(ctx context.Context, sourceID string) (*model.PaymentTransaction, error) {
	return r.findOne(ctx, "source_id = ?", sourceID)
}

// FindByGatewayID matches a payment-level event on the payment id or the intent id.
func (r *PaymentRepository) FindByGatewayID(ctx context.Context, paymentID, intentID string) (*model.PaymentTransaction, error) {
	if paymentID != "" {
		txn, err := r.findOne(ctx, "payment_id = ?", paymentID)
		if err == nil || !errors.Is(err, apperror.ErrNotFound) {
			return txn, err
		}
	}
	if intentID != "" {
		return r.findOne(ctx, "payment_intent_id = ?", intentID)
	}
	return nil, apperror.NewNotFound("transaction not found")
}

func (r *PaymentRepository) FindOpenForOrder(ctx context.Context, orderID uint) (*model.PaymentTransaction, error) {
	return r.findOne(ctx, "order_id = ? AND status IN ?", orderID, constants.TxnOpenStatuses)
}

// FindStale lists open transactions last touched before the cutoff.
func (r *PaymentRepository) FindStale(ctx context.Context, before time.Time, limit int) ([]model.PaymentTransaction, error) {
	var txns []model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", constants.TxnOpenStatuses, before).
		Order("updated_at asc").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

// Touch moves an open transaction to the back of the stale queue.
func (r *PaymentRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("id = ? AND status IN ?", id, constants.TxnOpenStatuses).
		UpdateColumn("updated_at", at).Error
}

// Update writes gateway ids and snapshots. Terminal transactions are left untouched.
func (r *PaymentRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("id = ? AND status IN ?", id, constants.TxnOpenStatuses).
		Updates(fields).Error
}

// Transition performs a compare-and-set on the status column and reports whether
// this call won the transition.
func (r *PaymentRepository) Transition(ctx context.Context, id uint, from []string, to string, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	if to == constants.TXN_PAID || to == constants.TXN_FAILED {
		updates["open_order_id"] = nil
	}
	res := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
