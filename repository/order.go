package repository

import (
	"context"
	"fmt"
	"laundry_service/apperror"
	"laundry_service/constants"
	"laundry_service/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

// WithTx binds the repository to an open transaction.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx, now: r.now}
}

const nextSequenceSQL = `INSERT INTO order_sequences (seq_year, last_value) VALUES (?, 1)
ON CONFLICT (seq_year) DO UPDATE SET last_value = order_sequences.last_value + 1
RETURNING last_value`

// NextOrderNumber increments the per-year counter in a single statement. The row
// stays locked until tx ends, which serializes concurrent creators.
func NextOrderNumber(tx *gorm.DB, at time.Time) (string, error) {
	var seq int
	if err := tx.Raw(nextSequenceSQL, at.Year()).Scan(&seq).Error; err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	if seq == 0 {
		return "", fmt.Errorf("next order number: counter returned no value")
	}
	return fmt.Sprintf("ORD-%d-%03d", at.Year(), seq), nil
}

// Create persists the order with its items and assigns the order number, all in
// one transaction. Totals are taken as given and never recomputed afterwards.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := NextOrderNumber(tx, r.now())
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if order.Status == "" {
			order.Status = constants.ORDER_PENDING
		}
		if order.PaymentStatus == "" {
			order.PaymentStatus = constants.PAYMENT_UNPAID
		}
		if err := tx.Create(order).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.NewConflict("order number already taken, please retry", err)
			}
			return err
		}
		return nil
	})
}

// FindByID loads an order with its items. userID 0 skips the ownership check.
func (r *OrderRepository) FindByID(ctx context.Context, id uint, userID uint) (*model.Order, error) {
	var order model.Order
	query := r.db.WithContext(ctx).Preload("Items.Service")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.First(&order, id).Error; err != nil {
		return nil, notFound(err, "order not found")
	}
	return &order, nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Preload("Items.Service").Where("order_number = ?", number).First(&order).Error; err != nil {
		return nil, notFound(err, "order not found")
	}
	return &order, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID uint, limit int) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.WithContext(ctx).
		Preload("Items.Service").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. Setting the current status again
// is a no-op and reports changed=false.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) (*model.Order, bool, error) {
	var order model.Order
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err, "order not found")
		}
		if err := ValidateTransition(order.Status, status); err != nil {
			return err
		}
		if order.Status == status {
			return nil
		}
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", id, order.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NewConflict("order was updated by another request, please retry", nil)
		}
		order.Status = status
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &order, changed, nil
}

// ApplyPayment records a successful payment on the order and puts it into the
// fulfillment queue as pending.
func (r *OrderRepository) ApplyPayment(ctx context.Context, id uint, method string, paidAt time.Time) (*model.Order, error) {
	var order model.Order
	db := r.db.WithContext(ctx)
	if err := db.First(&order, id).Error; err != nil {
		return nil, notFound(err, "order not found")
	}
	updates := map[string]any{
		"status":         constants.ORDER_PENDING,
		"payment_status": constants.PAYMENT_PAID,
		"paid_at":        paidAt,
	}
	if method != "" {
		updates["payment_method"] = method
	}
	if err := db.Model(&model.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	order.Status = constants.ORDER_PENDING
	order.PaymentStatus = constants.PAYMENT_PAID
	order.PaidAt = &paidAt
	if method != "" {
		order.PaymentMethod = method
	}
	return &order, nil
}

// ApplyPaymentFailure marks the order unpaid and cancels it if fulfillment has not started.
func (r *OrderRepository) ApplyPaymentFailure(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	db := r.db.WithContext(ctx)
	if err := db.First(&order, id).Error; err != nil {
		return nil, notFound(err, "order not found")
	}
	if order.PaymentStatus == constants.PAYMENT_PAID {
		return &order, nil
	}
	updates := map[string]any{"payment_status": constants.PAYMENT_UNPAID}
	if order.Status == constants.ORDER_PENDING {
		updates["status"] = constants.ORDER_CANCELLED
	}
	if err := db.Model(&model.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	order.PaymentStatus = constants.PAYMENT_UNPAID
	if s, ok := updates["status"].(string); ok {
		order.Status = s
	}
	return &order, nil
}

// LoyaltyPoints is one point per full 10 of the order total.
func LoyaltyPoints(total decimal.Decimal) int {
	if total.IsNegative() {
		return 0
	}
	return int(total.Div(decimal.NewFromInt(10)).Floor().IntPart())
}

// AwardLoyalty credits the owner once per order. The conditional update on
// loyalty_points_awarded makes a second call a no-op.
func (r *OrderRepository) AwardLoyalty(ctx context.Context, order *model.Order) (int, error) {
	points := LoyaltyPoints(order.Total)
	if points <= 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Order{}).
		Where("id = ? AND loyalty_points_awarded = 0", order.ID).
		Update("loyalty_points_awarded", points)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	if err := db.Model(&model.User{}).
		Where("id = ?", order.UserId).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error; err != nil {
		return 0, err
	}
	order.LoyaltyPointsAwarded = points
	return points, nil
}
