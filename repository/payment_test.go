package repository

import (
	"context"
	"errors"
	"laundry_service/apperror"
	"laundry_service/constants"
	"laundry_service/model"
	"testing"

	"github.com/shopspring/decimal"
)

func makeTxn(id string, userID uint, orderID *uint) *model.PaymentTransaction {
	return &model.PaymentTransaction{
		TransactionId: id,
		OrderId:       orderID,
		UserId:        userID,
		Amount:        decimal.NewFromInt(625),
		Currency:      constants.CURRENCY_PHP,
		Status:        constants.TXN_PENDING,
	}
}

func TestPaymentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := seedUser(t, db)
	orders := NewOrderRepository(db)
	order := makeOrder(user.ID, "625")
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("Create order error = %v", err)
	}
	repo := NewPaymentRepository(db)

	first := makeTxn("TXN-20240115-AAAAAAAA", user.ID, &order.ID)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("Given an open transaction When creating another for the same order Then it is rejected", func(t *testing.T) {
		err := repo.Create(ctx, makeTxn("TXN-20240115-BBBBBBBB", user.ID, &order.ID))
		if !errors.Is(err, ErrOpenTransactionExists) {
			t.Fatalf("expected ErrOpenTransactionExists, got %v", err)
		}
		open, err := repo.FindOpenForOrder(ctx, order.ID)
		if err != nil || open.TransactionId != first.TransactionId {
			t.Fatalf("FindOpenForOrder() = %v, %v", open, err)
		}
	})

	t.Run("Given a pending transaction When two callers race to paid Then only one wins", func(t *testing.T) {
		won, err := repo.Transition(ctx, first.ID, []string{constants.TXN_PENDING, constants.TXN_PROCESSING}, constants.TXN_PAID, nil)
		if err != nil || !won {
			t.Fatalf("first Transition() = %v, %v", won, err)
		}
		won, err = repo.Transition(ctx, first.ID, []string{constants.TXN_PENDING, constants.TXN_PROCESSING}, constants.TXN_PAID, nil)
		if err != nil || won {
			t.Fatalf("second Transition() = %v, %v", won, err)
		}
	})

	t.Run("Given the previous transaction is terminal When creating a new one Then the order accepts it", func(t *testing.T) {
		if err := repo.Create(ctx, makeTxn("TXN-20240115-CCCCCCCC", user.ID, &order.ID)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	})

	t.Run("Given gateway ids When matching Then the payment id and intent id are both searched", func(t *testing.T) {
		txn := makeTxn("TXN-20240115-DDDDDDDD", user.ID, nil)
		txn.PaymentIntentId = "pi_123"
		if err := repo.Create(ctx, txn); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		found, err := repo.FindByGatewayID(ctx, "pay_unknown", "pi_123")
		if err != nil || found.ID != txn.ID {
			t.Fatalf("FindByGatewayID() = %v, %v", found, err)
		}
		_, err = repo.FindByGatewayID(ctx, "pay_unknown", "")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}
