package service

import (
	"context"
	"encoding/json"
	"errors"
	"laundry_service/constants"
	"laundry_service/model"
	"laundry_service/paymongo"
	"testing"
)

type webhookResource struct {
	ID              string
	Type            string
	Status          string
	Amount          int64
	SourceID        string
	PaymentIntentID string
	TransactionID   string
}

func webhookBody(t *testing.T, eventID, eventType string, res webhookResource) []byte {
	t.Helper()
	attrs := map[string]any{"status": res.Status, "amount": res.Amount}
	if res.SourceID != "" {
		attrs["source"] = map[string]any{"id": res.SourceID, "type": "gcash"}
	}
	if res.PaymentIntentID != "" {
		attrs["payment_intent_id"] = res.PaymentIntentID
	}
	if res.TransactionID != "" {
		attrs["metadata"] = map[string]any{"transaction_id": res.TransactionID}
	}
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"id":   eventID,
			"type": "event",
			"attributes": map[string]any{
				"type": eventType,
				"data": map[string]any{"id": res.ID, "type": res.Type, "attributes": attrs},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal webhook: %v", err)
	}
	return body
}

func (f *fixture) deliver(t *testing.T, body []byte) *WebhookResult {
	t.Helper()
	result, err := f.payments.HandleWebhook(context.Background(), body, paymongo.Sign("whsk_test", body))
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	return result
}

// sourceCheckout places a gcash order and opens a source for it.
func (f *fixture) sourceCheckout(t *testing.T) (*model.Order, *model.PaymentTransaction) {
	t.Helper()
	ctx := context.Background()
	order := f.simpleOrder(t, constants.METHOD_GCASH)
	txn, err := f.payments.CreateIntent(ctx, f.user.ID, order.ID)
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	txn, err = f.payments.CreateSource(ctx, f.user.ID, txn.TransactionId, constants.METHOD_GCASH)
	if err != nil {
		t.Fatalf("CreateSource() error = %v", err)
	}
	return order, txn
}

func TestHandleWebhookSignature(t *testing.T) {
	t.Run("Given a forged signature When delivering Then it is rejected and nothing changes", func(t *testing.T) {
		f := newFixture(t)
		order, txn := f.sourceCheckout(t)
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: txn.SourceId, Type: "source", Status: "chargeable", Amount: 62500})

		_, err := f.payments.HandleWebhook(context.Background(), body, paymongo.Sign("not_the_secret", body))
		if !errors.Is(err, paymongo.ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature, got %v", err)
		}
		if _, _, charges := f.gateway.counts(); charges != 0 {
			t.Errorf("charges = %d, want 0", charges)
		}
		if got := f.reloadOrder(t, order.ID); got.PaymentStatus != constants.PAYMENT_UNPAID {
			t.Errorf("payment status = %s", got.PaymentStatus)
		}
	})

	t.Run("Given no signature in production When delivering Then it is missing", func(t *testing.T) {
		f := newFixture(t)
		body := webhookBody(t, "evt_1", paymongo.EventPaymentPaid, webhookResource{ID: "pay_1", Type: "payment", Status: "paid"})

		if _, err := f.payments.HandleWebhook(context.Background(), body, ""); !errors.Is(err, paymongo.ErrMissingSignature) {
			t.Errorf("expected ErrMissingSignature, got %v", err)
		}
	})

	t.Run("Given signatures are optional When an unsigned event arrives Then it is processed", func(t *testing.T) {
		f := newFixture(t)
		f.payments.cfg.RequireSignature = false
		body := webhookBody(t, "evt_1", "checkout_session.payment.paid", webhookResource{ID: "cs_1", Type: "checkout_session"})

		result, err := f.payments.HandleWebhook(context.Background(), body, "")
		if err != nil || result.Outcome != WebhookIgnored {
			t.Errorf("HandleWebhook() = %+v, %v", result, err)
		}
	})

	t.Run("Given a signed garbage body When delivering Then the payload is invalid", func(t *testing.T) {
		f := newFixture(t)
		body := []byte(`{"data":{}}`)

		if _, err := f.payments.HandleWebhook(context.Background(), body, paymongo.Sign("whsk_test", body)); !errors.Is(err, paymongo.ErrInvalidPayload) {
			t.Errorf("expected ErrInvalidPayload, got %v", err)
		}
	})
}

func TestHandleWebhookSource(t *testing.T) {
	t.Run("Given a chargeable source When the event arrives twice Then it is charged once and settled", func(t *testing.T) {
		f := newFixture(t)
		order, txn := f.sourceCheckout(t)
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: txn.SourceId, Type: "source", Status: "chargeable", Amount: 62500})

		first := f.deliver(t, body)
		second := f.deliver(t, body)

		if first.Outcome != WebhookProcessed || first.TransactionID != txn.TransactionId {
			t.Errorf("first = %+v", first)
		}
		if second.Outcome != WebhookFinal {
			t.Errorf("second outcome = %s, want %s", second.Outcome, WebhookFinal)
		}
		if _, _, charges := f.gateway.counts(); charges != 1 {
			t.Errorf("charges = %d, want 1", charges)
		}
		if got := f.reloadOrder(t, order.ID); got.PaymentStatus != constants.PAYMENT_PAID {
			t.Errorf("payment status = %s", got.PaymentStatus)
		}
	})

	t.Run("Given the charge is still pending When the event is redelivered Then no second charge is made", func(t *testing.T) {
		f := newFixture(t)
		_, txn := f.sourceCheckout(t)
		f.gateway.chargeStatus = paymongo.PaymentPending
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: txn.SourceId, Type: "source", Status: "chargeable"})

		f.deliver(t, body)
		f.deliver(t, body)

		if _, _, charges := f.gateway.counts(); charges != 1 {
			t.Errorf("charges = %d, want 1", charges)
		}
		got := f.reloadTxn(t, txn.TransactionId)
		if got.Status != constants.TXN_PROCESSING || got.PaymentId != "pay_1" {
			t.Errorf("transaction = %s/%s", got.Status, got.PaymentId)
		}
	})

	t.Run("Given an unknown source with our transaction id When the event arrives Then the source id is back-filled", func(t *testing.T) {
		f := newFixture(t)
		order := f.simpleOrder(t, constants.METHOD_GCASH)
		txn, _ := f.payments.CreateIntent(context.Background(), f.user.ID, order.ID)
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: "src_external", Type: "source", Status: "chargeable", TransactionID: txn.TransactionId})

		result := f.deliver(t, body)

		if result.Outcome != WebhookProcessed {
			t.Errorf("outcome = %s", result.Outcome)
		}
		got := f.reloadTxn(t, txn.TransactionId)
		if got.SourceId != "src_external" || got.Status != constants.TXN_PAID {
			t.Errorf("transaction = %s/%s", got.SourceId, got.Status)
		}
		if _, _, charges := f.gateway.counts(); charges != 1 {
			t.Errorf("charges = %d, want 1", charges)
		}
	})

	t.Run("Given a back-filled source whose charge is pending When checkout is retried Then no second source is opened", func(t *testing.T) {
		f := newFixture(t)
		order := f.simpleOrder(t, constants.METHOD_GCASH)
		txn, _ := f.payments.CreateIntent(context.Background(), f.user.ID, order.ID)
		f.gateway.chargeStatus = paymongo.PaymentPending
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: "src_external", Type: "source", Status: "chargeable", TransactionID: txn.TransactionId})

		if result := f.deliver(t, body); result.Outcome != WebhookProcessed {
			t.Fatalf("outcome = %s", result.Outcome)
		}
		got := f.reloadTxn(t, txn.TransactionId)
		if got.Status != constants.TXN_PROCESSING || got.SourceId != "src_external" || got.PaymentId != "pay_1" {
			t.Fatalf("transaction = %s/%s/%s", got.Status, got.SourceId, got.PaymentId)
		}

		again, err := f.payments.CreateSource(context.Background(), f.user.ID, txn.TransactionId, constants.METHOD_GCASH)
		if err != nil || again.SourceId != "src_external" {
			t.Errorf("CreateSource() = %v, %v, want the existing checkout", again, err)
		}
		if _, sources, _ := f.gateway.counts(); sources != 0 {
			t.Errorf("sources = %d, want 0", sources)
		}
		if got := f.reloadTxn(t, txn.TransactionId); got.SourceId != "src_external" {
			t.Errorf("source id overwritten with %s", got.SourceId)
		}
	})

	t.Run("Given a source that belongs to nobody When the event arrives Then it is acknowledged as unmatched", func(t *testing.T) {
		f := newFixture(t)
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: "src_unknown", Type: "source", Status: "chargeable"})

		if result := f.deliver(t, body); result.Outcome != WebhookNoMatch {
			t.Errorf("outcome = %s, want %s", result.Outcome, WebhookNoMatch)
		}
	})

	t.Run("Given metadata naming a transaction with another source When the event arrives Then it is unmatched", func(t *testing.T) {
		f := newFixture(t)
		_, txn := f.sourceCheckout(t)
		body := webhookBody(t, "evt_1", paymongo.EventSourceChargeable, webhookResource{ID: "src_other", Type: "source", Status: "chargeable", TransactionID: txn.TransactionId})

		if result := f.deliver(t, body); result.Outcome != WebhookNoMatch {
			t.Errorf("outcome = %s, want %s", result.Outcome, WebhookNoMatch)
		}
		if _, _, charges := f.gateway.counts(); charges != 0 {
			t.Errorf("charges = %d, want 0", charges)
		}
	})
}

func TestHandleWebhookPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Given an intent When payment.paid arrives Then the transaction settles with the payment id", func(t *testing.T) {
		f := newFixture(t)
		order := f.simpleOrder(t, constants.METHOD_CARD)
		txn, _ := f.payments.CreateIntent(ctx, f.user.ID, order.ID)
		body := webhookBody(t, "evt_1", paymongo.EventPaymentPaid, webhookResource{ID: "pay_card", Type: "payment", Status: "paid", Amount: 62500, PaymentIntentID: txn.PaymentIntentId})

		if result := f.deliver(t, body); result.Outcome != WebhookProcessed {
			t.Fatalf("outcome = %s", result.Outcome)
		}
		got := f.reloadTxn(t, txn.TransactionId)
		if got.Status != constants.TXN_PAID || got.PaymentId != "pay_card" {
			t.Errorf("transaction = %s/%s", got.Status, got.PaymentId)
		}
		if f.reloadUser(t).LoyaltyPoints != 62 {
			t.Errorf("loyalty = %d", f.reloadUser(t).LoyaltyPoints)
		}
	})

	t.Run("Given the webhook settled first When the app polls Then the result is the same and nothing repeats", func(t *testing.T) {
		f := newFixture(t)
		order := f.simpleOrder(t, constants.METHOD_CARD)
		txn, _ := f.payments.CreateIntent(ctx, f.user.ID, order.ID)
		f.deliver(t, webhookBody(t, "evt_1", paymongo.EventPaymentPaid, webhookResource{ID: "pay_card", Type: "payment", Status: "paid", PaymentIntentID: txn.PaymentIntentId}))
		f.gateway.intentStatus = paymongo.IntentSucceeded

		got, err := f.payments.CheckStatus(ctx, f.user.ID, txn.TransactionId)
		if err != nil || got.Status != constants.TXN_PAID {
			t.Fatalf("CheckStatus() = %v, %v", got, err)
		}
		if f.events.Count(constants.EVENT_PAYMENT_PAID) != 1 || f.reloadUser(t).LoyaltyPoints != 62 {
			t.Error("settlement effects repeated")
		}
	})

	t.Run("Given the poll settled first When payment.paid arrives Then it is already final", func(t *testing.T) {
		f := newFixture(t)
		order := f.simpleOrder(t, constants.METHOD_CARD)
		txn, _ := f.payments.CreateIntent(ctx, f.user.ID, order.ID)
		f.gateway.intentStatus = paymongo.IntentSucceeded
		f.gateway.intentPayID = "pay_card"
		if _, err := f.payments.CheckStatus(ctx, f.user.ID, txn.TransactionId); err != nil {
			t.Fatalf("CheckStatus() error = %v", err)
		}

		result := f.deliver(t, webhookBody(t, "evt_1", paymongo.EventPaymentPaid, webhookResource{ID: "pay_card", Type: "payment", Status: "paid", PaymentIntentID: txn.PaymentIntentId}))

		if result.Outcome != WebhookFinal {
			t.Errorf("outcome = %s, want %s", result.Outcome, WebhookFinal)
		}
		if f.events.Count(constants.EVENT_PAYMENT_PAID) != 1 || f.notifier.count("payment_received") > 1 {
			t.Error("settlement effects repeated")
		}
	})

	t.Run("Given a charge not yet recorded When payment.paid arrives for its source Then the payment id is back-filled", func(t *testing.T) {
		f := newFixture(t)
		_, txn := f.sourceCheckout(t)

		result := f.deliver(t, webhookBody(t, "evt_1", paymongo.EventPaymentPaid, webhookResource{ID: "pay_early", Type: "payment", Status: "paid", SourceID: txn.SourceId}))

		if result.Outcome != WebhookProcessed {
			t.Fatalf("outcome = %s", result.Outcome)
		}
		got := f.reloadTxn(t, txn.TransactionId)
		if got.Status != constants.TXN_PAID || got.PaymentId != "pay_early" {
			t.Errorf("transaction = %s/%s", got.Status, got.PaymentId)
		}
	})

	t.Run("Given payment.failed then a later payment.paid When delivered Then the failure is final", func(t *testing.T) {
		f := newFixture(t)
		order := f.simpleOrder(t, constants.METHOD_CARD)
		txn, _ := f.payments.CreateIntent(ctx, f.user.ID, order.ID)

		f.deliver(t, webhookBody(t, "evt_1", paymongo.EventPaymentFailed, webhookResource{ID: "pay_declined", Type: "payment", Status: "failed", PaymentIntentID: txn.PaymentIntentId}))
		if got := f.reloadOrder(t, order.ID); got.Status != constants.ORDER_CANCELLED {
			t.Fatalf("after failure order status = %s", got.Status)
		}

		result := f.deliver(t, webhookBody(t, "evt_2", paymongo.EventPaymentPaid, webhookResource{ID: "pay_retry", Type: "payment", Status: "paid", PaymentIntentID: txn.PaymentIntentId}))

		if result.Outcome != WebhookFinal {
			t.Errorf("outcome = %s, want %s", result.Outcome, WebhookFinal)
		}
		got := f.reloadOrder(t, order.ID)
		if got.Status != constants.ORDER_CANCELLED || got.PaymentStatus != constants.PAYMENT_UNPAID {
			t.Errorf("order = %s/%s", got.Status, got.PaymentStatus)
		}
		if failed := f.reloadTxn(t, txn.TransactionId); failed.Status != constants.TXN_FAILED || failed.PaymentId == "pay_retry" {
			t.Errorf("transaction = %s/%s", failed.Status, failed.PaymentId)
		}
		if f.events.Count(constants.EVENT_PAYMENT_PAID) != 0 || f.reloadUser(t).LoyaltyPoints != 0 {
			t.Error("paid side effects ran for a failed transaction")
		}
	})

	t.Run("Given an event for an unknown payment When delivered Then it is acknowledged as unmatched", func(t *testing.T) {
		f := newFixture(t)

		result := f.deliver(t, webhookBody(t, "evt_1", paymongo.EventPaymentPaid, webhookResource{ID: "pay_ghost", Type: "payment", Status: "paid"}))

		if result.Outcome != WebhookNoMatch {
			t.Errorf("outcome = %s, want %s", result.Outcome, WebhookNoMatch)
		}
	})
}
