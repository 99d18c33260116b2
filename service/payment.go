package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"laundry_service/apperror"
	"laundry_service/constants"
	"laundry_service/model"
	"laundry_service/notify"
	"laundry_service/paymongo"
	"laundry_service/repository"
	"net/url"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gateway is the subset of the PayMongo client the reconciliation engine uses.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, description string, metadata map[string]any) (*paymongo.Intent, error)
	CreateSource(ctx context.Context, method string, amount decimal.Decimal, redirect paymongo.Redirect, metadata map[string]any) (*paymongo.Source, error)
	RetrieveIntent(ctx context.Context, id string) (*paymongo.Intent, error)
	RetrieveSource(ctx context.Context, id string) (*paymongo.Source, error)
	CreateCharge(ctx context.Context, amount decimal.Decimal, sourceID, description string, metadata map[string]any) (*paymongo.Payment, error)
}

type PaymentConfig struct {
	AppURL           string
	AppName          string
	WebhookSecret    string
	RequireSignature bool
	ChargeLockTTL    time.Duration
}

type PaymentService struct {
	db       *gorm.DB
	orders   *repository.OrderRepository
	payments *repository.PaymentRepository
	users    *repository.UserRepository
	gateway  Gateway
	collab   Collaborators
	cfg      PaymentConfig
	now      func() time.Time
}

func NewPaymentService(db *gorm.DB, gateway Gateway, collab Collaborators, cfg PaymentConfig) *PaymentService {
	if cfg.ChargeLockTTL <= 0 {
		cfg.ChargeLockTTL = time.Minute
	}
	return &PaymentService{
		db:       db,
		orders:   repository.NewOrderRepository(db),
		payments: repository.NewPaymentRepository(db),
		users:    repository.NewUserRepository(db),
		gateway:  gateway,
		collab:   collab.withDefaults(),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Methods lists the payment methods offered to the app.
func (s *PaymentService) Methods() []model.PaymentMethod {
	return []model.PaymentMethod{
		{Id: constants.METHOD_GCASH, Name: "GCash", Description: "Pay using your GCash wallet", Enabled: true, UsesSource: true},
		{Id: constants.METHOD_GRAB_PAY, Name: "GrabPay", Description: "Pay using your GrabPay wallet", Enabled: true, UsesSource: true},
		{Id: constants.METHOD_PAYMAYA, Name: "Maya", Description: "Pay using your Maya wallet", Enabled: true, UsesSource: true},
		{Id: constants.METHOD_CARD, Name: "Credit/Debit Card", Description: "Visa or Mastercard", Enabled: true},
		{Id: constants.METHOD_BILLEASE, Name: "BillEase", Description: "Buy now, pay later", Enabled: false},
		{Id: constants.METHOD_CASH, Name: "Cash", Description: "Pay the rider on pickup", Enabled: true},
	}
}

const txnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTransactionID returns TXN-<yyyymmdd>-<8 random upper-case alphanumerics>.
func NewTransactionID(at time.Time) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i := range b {
		b[i] = txnAlphabet[int(b[i])%len(txnAlphabet)]
	}
	return fmt.Sprintf("TXN-%s-%s", at.Format("20060102"), b)
}

func gatewayError(err error) error {
	return apperror.NewGateway(constants.ERROR_GATEWAY, err)
}

func isTerminal(status string) bool {
	return status == constants.TXN_PAID || status == constants.TXN_FAILED
}

func (s *PaymentService) metadata(txnID string, order *model.Order) map[string]any {
	return map[string]any{
		"transaction_id": txnID,
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"user_id":        order.UserId,
	}
}

func orderDescription(order *model.Order) string {
	return "Laundry Order " + order.OrderNumber
}

// CreateIntent opens a payment intent for an unpaid order. An order that already
// has an open transaction gets that transaction back. Nothing is written when the
// gateway call fails.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID uint) (*model.PaymentTransaction, error) {
	order, err := s.orders.FindByID(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	switch {
	case order.PaymentStatus == constants.PAYMENT_PAID:
		return nil, apperror.NewState("order is already paid")
	case order.Status == constants.ORDER_CANCELLED:
		return nil, apperror.NewState("order is cancelled")
	case order.PaymentMethod == constants.METHOD_CASH:
		return nil, apperror.FieldError("orderId", "cash orders are paid on pickup")
	}

	existing, err := s.payments.FindOpenForOrder(ctx, orderID)
	if err == nil {
		logger.Info().Str("txn", existing.TransactionId).Uint("order_id", orderID).Msg("returning open transaction")
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	txnID := NewTransactionID(s.now())
	meta := s.metadata(txnID, order)
	intent, err := s.gateway.CreateIntent(ctx, order.Total, orderDescription(order), meta)
	if err != nil {
		logger.Error().Err(err).Uint("order_id", orderID).Msg("create payment intent failed")
		return nil, gatewayError(err)
	}

	method := order.PaymentMethod
	if method == "" {
		method = constants.METHOD_CARD
	}
	txn := &model.PaymentTransaction{
		TransactionId:   txnID,
		OrderId:         &order.ID,
		UserId:          userID,
		Amount:          order.Total,
		Currency:        constants.CURRENCY_PHP,
		Status:          constants.TXN_PENDING,
		PaymentMethod:   method,
		PaymentIntentId: intent.ID,
		ClientKey:       intent.Attributes.ClientKey,
		Metadata:        datatypes.JSONMap(meta),
		ResponseData:    datatypes.JSON(intent.Raw),
	}
	if err := s.payments.Create(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrOpenTransactionExists) {
			// a concurrent request won; its intent is the one the app will use
			logger.Warn().Str("intent", intent.ID).Uint("order_id", orderID).Msg("intent orphaned by concurrent request")
			return s.payments.FindOpenForOrder(ctx, orderID)
		}
		return nil, err
	}
	logger.Info().Str("txn", txnID).Str("intent", intent.ID).Str("amount", txn.Amount.StringFixed(2)).Msg("payment intent created")
	return txn, nil
}

func (s *PaymentService) redirectURL(path, txnID string) string {
	return s.cfg.AppURL + path + "?transaction_id=" + url.QueryEscape(txnID)
}

// CreateSource starts an e-wallet checkout for a pending transaction and moves it
// to processing. Repeating the call for a transaction already in checkout returns it.
func (s *PaymentService) CreateSource(ctx context.Context, userID uint, transactionID, method string) (*model.PaymentTransaction, error) {
	if !slices.Contains(constants.SourceMethods, method) {
		return nil, apperror.FieldError("type", "unsupported e-wallet type")
	}
	txn, err := s.payments.FindForUser(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	switch txn.Status {
	case constants.TXN_PENDING:
	case constants.TXN_PROCESSING:
		if txn.SourceId != "" && txn.PaymentMethod == method {
			return txn, nil
		}
		return nil, apperror.NewState("payment is already in progress")
	default:
		return nil, apperror.NewState("payment is already " + txn.Status)
	}
	if txn.OrderId == nil {
		return nil, apperror.NewState("transaction has no order")
	}
	order, err := s.orders.FindByID(ctx, *txn.OrderId, 0)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == constants.PAYMENT_PAID {
		return nil, apperror.NewState("order is already paid")
	}

	source, err := s.gateway.CreateSource(ctx, method, txn.Amount, paymongo.Redirect{
		Success: s.redirectURL("/payment/success", txn.TransactionId),
		Failed:  s.redirectURL("/payment/failed", txn.TransactionId),
	}, s.metadata(txn.TransactionId, order))
	if err != nil {
		logger.Error().Err(err).Str("txn", txn.TransactionId).Msg("create payment source failed")
		return nil, gatewayError(err)
	}

	won, err := s.payments.Transition(ctx, txn.ID, []string{constants.TXN_PENDING}, constants.TXN_PROCESSING, map[string]any{
		"source_id":      source.ID,
		"checkout_url":   source.Attributes.Redirect.CheckoutURL,
		"payment_method": method,
		"response_data":  datatypes.JSON(source.Raw),
	})
	if err != nil {
		return nil, err
	}
	current, err := s.payments.FindByTransactionID(ctx, txn.TransactionId)
	if err != nil {
		return nil, err
	}
	if !won {
		logger.Warn().Str("txn", txn.TransactionId).Str("source", source.ID).Msg("source orphaned by concurrent request")
		if current.Status == constants.TXN_PROCESSING && current.SourceId != "" {
			return current, nil
		}
		return nil, apperror.NewState("payment is already " + current.Status)
	}
	logger.Info().Str("txn", txn.TransactionId).Str("source", source.ID).Str("method", method).Msg("payment source created")
	s.broadcast(ctx, current)
	return current, nil
}

// CheckStatus is the poll path: the transaction is reconciled against the gateway
// unless it is already final.
func (s *PaymentService) CheckStatus(ctx context.Context, userID uint, transactionID string) (*model.PaymentTransaction, error) {
	txn, err := s.payments.FindForUser(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	if isTerminal(txn.Status) {
		return txn, nil
	}
	if err := s.reconcile(ctx, txn); err != nil {
		return nil, err
	}
	return s.payments.FindByTransactionID(ctx, transactionID)
}

// ProcessSource re-checks an e-wallet source after the redirect and charges it
// when it became chargeable.
func (s *PaymentService) ProcessSource(ctx context.Context, userID uint, transactionID string) (*model.PaymentTransaction, error) {
	txn, err := s.payments.FindForUser(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	if isTerminal(txn.Status) {
		return txn, nil
	}
	if txn.SourceId == "" {
		return nil, apperror.NewState("no payment source found for this transaction")
	}
	if err := s.reconcileSource(ctx, txn); err != nil {
		return nil, err
	}
	return s.payments.FindByTransactionID(ctx, transactionID)
}

func (s *PaymentService) reconcile(ctx context.Context, txn *model.PaymentTransaction) error {
	if txn.SourceId != "" {
		return s.reconcileSource(ctx, txn)
	}
	if txn.PaymentIntentId == "" {
		return nil
	}
	intent, err := s.gateway.RetrieveIntent(ctx, txn.PaymentIntentId)
	if err != nil {
		return gatewayError(err)
	}
	switch intent.Attributes.Status {
	case paymongo.IntentSucceeded, paymongo.PaymentPaid:
		if id := intent.PaymentID(); id != "" && txn.PaymentId == "" {
			txn.PaymentId = id
		}
		_, err = s.MarkPaid(ctx, txn)
	case paymongo.IntentCancelled, paymongo.PaymentFailed:
		_, err = s.MarkFailed(ctx, txn, "payment intent "+intent.Attributes.Status)
	}
	return err
}

func (s *PaymentService) reconcileSource(ctx context.Context, txn *model.PaymentTransaction) error {
	source, err := s.gateway.RetrieveSource(ctx, txn.SourceId)
	if err != nil {
		return gatewayError(err)
	}
	switch source.Attributes.Status {
	case paymongo.SourceChargeable:
		return s.chargeSource(ctx, txn, source.ID)
	case paymongo.SourcePaid:
		_, err = s.MarkPaid(ctx, txn)
	case paymongo.SourceCancelled, paymongo.SourceExpired, paymongo.SourceFailed:
		_, err = s.MarkFailed(ctx, txn, "source "+source.Attributes.Status)
	}
	return err
}

// chargeSource creates the payment for a chargeable source. The per-transaction
// lock and the recorded payment id keep duplicate deliveries from charging twice.
func (s *PaymentService) chargeSource(ctx context.Context, txn *model.PaymentTransaction, sourceID string) error {
	if txn.PaymentId != "" || isTerminal(txn.Status) {
		return nil
	}
	release, ok, err := s.collab.Locker.Acquire(ctx, "charge:"+txn.TransactionId, s.cfg.ChargeLockTTL)
	if err != nil {
		return fmt.Errorf("acquire charge lock: %w", err)
	}
	if !ok {
		logger.Info().Str("txn", txn.TransactionId).Msg("charge already in progress")
		return nil
	}
	defer release()

	current, err := s.payments.FindByTransactionID(ctx, txn.TransactionId)
	if err != nil {
		return err
	}
	if current.PaymentId != "" || isTerminal(current.Status) {
		return nil
	}

	meta := map[string]any{"transaction_id": current.TransactionId}
	description := "Payment " + current.TransactionId
	if current.OrderId != nil {
		if order, err := s.orders.FindByID(ctx, *current.OrderId, 0); err == nil {
			meta = s.metadata(current.TransactionId, order)
			description = orderDescription(order)
		}
	}
	payment, err := s.gateway.CreateCharge(ctx, current.Amount, sourceID, description, meta)
	if err != nil {
		logger.Error().Err(err).Str("txn", current.TransactionId).Str("source", sourceID).Msg("charge source failed")
		return gatewayError(err)
	}
	fields := map[string]any{
		"payment_id":    payment.ID,
		"response_data": datatypes.JSON(payment.Raw),
	}
	if current.SourceId == "" {
		fields["source_id"] = sourceID
	}
	moved, err := s.payments.Transition(ctx, current.ID, []string{constants.TXN_PENDING}, constants.TXN_PROCESSING, fields)
	if err != nil {
		return err
	}
	if moved {
		current.Status = constants.TXN_PROCESSING
	} else if err := s.payments.Update(ctx, current.ID, fields); err != nil {
		return err
	}
	current.PaymentId = payment.ID
	current.SourceId = sourceID
	logger.Info().Str("txn", current.TransactionId).Str("payment", payment.ID).Str("status", payment.Attributes.Status).Msg("source charged")

	switch payment.Attributes.Status {
	case paymongo.PaymentPaid:
		_, err = s.MarkPaid(ctx, current)
	case paymongo.PaymentFailed:
		_, err = s.MarkFailed(ctx, current, payment.Attributes.FailedMessage)
	}
	return err
}

// MarkPaid settles an open transaction and its order in one database transaction.
// Only the call that wins the status update applies the loyalty credit and emits
// the after-commit effects; later calls and failed transactions are no-ops
// reporting false.
func (s *PaymentService) MarkPaid(ctx context.Context, txn *model.PaymentTransaction) (bool, error) {
	paidAt := s.now()
	var order *model.Order
	points := 0
	won := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{"paid_at": paidAt}
		if txn.PaymentId != "" {
			fields["payment_id"] = txn.PaymentId
		}
		ok, err := s.payments.WithTx(tx).Transition(ctx, txn.ID,
			constants.TxnOpenStatuses, constants.TXN_PAID, fields)
		if err != nil || !ok {
			return err
		}
		won = true
		if txn.OrderId == nil {
			return nil
		}
		orders := s.orders.WithTx(tx)
		order, err = orders.ApplyPayment(ctx, *txn.OrderId, txn.PaymentMethod, paidAt)
		if err != nil {
			return err
		}
		points, err = orders.AwardLoyalty(ctx, order)
		return err
	})
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	txn.Status = constants.TXN_PAID
	txn.PaidAt = &paidAt
	log := logger.Info().Str("txn", txn.TransactionId).Str("amount", txn.Amount.StringFixed(2)).Int("loyalty_points", points)
	if order != nil {
		log = log.Str("order", order.OrderNumber).Str("order_status", order.Status)
	}
	log.Msg("payment settled")

	publish(ctx, s.collab.Events, constants.EVENT_PAYMENT_PAID, txn.TransactionId, statusPayload(txn, order))
	s.broadcast(ctx, txn)
	if order != nil {
		s.notifyPaid(ctx, txn, order)
	}
	return true, nil
}

// MarkFailed closes an open transaction as failed. The order goes back to unpaid
// and is cancelled if it was still waiting for pickup.
func (s *PaymentService) MarkFailed(ctx context.Context, txn *model.PaymentTransaction, reason string) (bool, error) {
	var order *model.Order
	won := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{}
		if txn.PaymentId != "" {
			fields["payment_id"] = txn.PaymentId
		}
		ok, err := s.payments.WithTx(tx).Transition(ctx, txn.ID, constants.TxnOpenStatuses, constants.TXN_FAILED, fields)
		if err != nil || !ok {
			return err
		}
		won = true
		if txn.OrderId == nil {
			return nil
		}
		order, err = s.orders.WithTx(tx).ApplyPaymentFailure(ctx, *txn.OrderId)
		return err
	})
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	txn.Status = constants.TXN_FAILED
	logger.Warn().Str("txn", txn.TransactionId).Str("reason", reason).Msg("payment failed")
	publish(ctx, s.collab.Events, constants.EVENT_PAYMENT_FAILED, txn.TransactionId, statusPayload(txn, order))
	s.broadcast(ctx, txn)
	return true, nil
}

func statusPayload(txn *model.PaymentTransaction, order *model.Order) map[string]any {
	payload := map[string]any{
		"transactionId": txn.TransactionId,
		"status":        txn.Status,
		"amount":        txn.Amount.StringFixed(2),
		"paidAt":        txn.PaidAt,
	}
	if order != nil {
		payload["orderId"] = order.ID
		payload["orderNumber"] = order.OrderNumber
		payload["orderStatus"] = order.Status
		payload["paymentStatus"] = order.PaymentStatus
	}
	return payload
}

// StatusChannel is the broadcast channel of one transaction.
func StatusChannel(transactionID string) string {
	return "payment:" + transactionID
}

func (s *PaymentService) broadcast(ctx context.Context, txn *model.PaymentTransaction) {
	payload, err := json.Marshal(statusPayload(txn, nil))
	if err != nil {
		return
	}
	if err := s.collab.Broadcaster.Publish(context.WithoutCancel(ctx), StatusChannel(txn.TransactionId), payload); err != nil {
		logger.Warn().Err(err).Str("txn", txn.TransactionId).Msg("broadcast status failed")
	}
}

// Subscribe streams status changes of a transaction owned by userID.
func (s *PaymentService) Subscribe(ctx context.Context, userID uint, transactionID string) (*model.PaymentTransaction, <-chan []byte, func(), error) {
	txn, err := s.payments.FindForUser(ctx, transactionID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	ch, stop := s.collab.Broadcaster.Subscribe(ctx, StatusChannel(transactionID))
	return txn, ch, stop, nil
}

// StatusMessage is the JSON sent to websocket listeners when they connect.
func StatusMessage(txn *model.PaymentTransaction) []byte {
	payload, _ := json.Marshal(statusPayload(txn, nil))
	return payload
}

func (s *PaymentService) notifyPaid(ctx context.Context, txn *model.PaymentTransaction, order *model.Order) {
	user, err := s.users.FindByID(context.WithoutCancel(ctx), order.UserId)
	if err != nil {
		logger.Warn().Err(err).Str("txn", txn.TransactionId).Msg("payment notification skipped, user not loaded")
		return
	}
	msg, err := notify.PaymentReceived(s.cfg.AppName, user, order, txn)
	if err != nil {
		logger.Error().Err(err).Str("txn", txn.TransactionId).Msg("payment notification skipped, render failed")
		return
	}
	s.collab.Notifier.Notify(notify.RecipientFor(user), msg)
}
