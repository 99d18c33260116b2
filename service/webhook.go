package service

import (
	"context"
	"errors"
	"laundry_service/apperror"
	"laundry_service/model"
	"laundry_service/paymongo"
	"laundry_service/pricing"
)

// Webhook outcomes reported back to the HTTP layer.
const (
	WebhookProcessed = "processed"
	WebhookNoMatch   = "no_match"
	WebhookIgnored   = "ignored"
	WebhookFinal     = "already_final"
)

type WebhookResult struct {
	EventID       string `json:"eventId"`
	EventType     string `json:"eventType"`
	TransactionID string `json:"transactionId,omitempty"`
	Outcome       string `json:"outcome"`
}

// HandleWebhook verifies and applies a gateway event. Signature and payload errors
// wrap paymongo.ErrInvalidSignature, ErrMissingSignature or ErrInvalidPayload;
// any other error means the delivery should be retried.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if s.cfg.RequireSignature || signature != "" {
		if err := paymongo.VerifySignature(s.cfg.WebhookSecret, body, signature); err != nil {
			logger.Warn().Err(err).Msg("webhook signature rejected")
			return nil, err
		}
	} else {
		logger.Warn().Msg("accepting unsigned webhook outside production")
	}

	evt, err := paymongo.ParseEvent(body)
	if err != nil {
		logger.Warn().Err(err).Msg("webhook payload rejected")
		return nil, err
	}
	result := &WebhookResult{EventID: evt.ID, EventType: evt.Type}
	logger.Info().Str("event", evt.ID).Str("type", evt.Type).Str("resource", evt.ResourceID).Msg("webhook received")

	var txn *model.PaymentTransaction
	switch evt.Type {
	case paymongo.EventSourceChargeable:
		txn, err = s.matchSourceEvent(ctx, evt)
	case paymongo.EventPaymentPaid, paymongo.EventPaymentFailed:
		txn, err = s.matchPaymentEvent(ctx, evt)
	default:
		result.Outcome = WebhookIgnored
		return result, nil
	}
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			logger.Warn().Str("event", evt.ID).Str("type", evt.Type).Str("resource", evt.ResourceID).Msg("webhook matched no transaction")
			result.Outcome = WebhookNoMatch
			return result, nil
		}
		return nil, err
	}
	result.TransactionID = txn.TransactionId

	if evt.Amount > 0 && evt.Amount != toMinor(txn) {
		logger.Warn().Str("txn", txn.TransactionId).Int64("event_amount", evt.Amount).Int64("txn_amount", toMinor(txn)).Msg("webhook amount differs from transaction")
	}

	switch evt.Type {
	case paymongo.EventSourceChargeable:
		if isTerminal(txn.Status) {
			result.Outcome = WebhookFinal
			return result, nil
		}
		err = s.chargeSource(ctx, txn, evt.SourceID)
	case paymongo.EventPaymentPaid:
		if isTerminal(txn.Status) {
			result.Outcome = WebhookFinal
			return result, nil
		}
		txn.PaymentId = evt.ResourceID
		_, err = s.MarkPaid(ctx, txn)
	case paymongo.EventPaymentFailed:
		if isTerminal(txn.Status) {
			result.Outcome = WebhookFinal
			return result, nil
		}
		_, err = s.MarkFailed(ctx, txn, "payment.failed webhook")
	}
	if err != nil {
		logger.Error().Err(err).Str("event", evt.ID).Str("txn", txn.TransactionId).Msg("webhook processing failed")
		return nil, err
	}
	result.Outcome = WebhookProcessed
	return result, nil
}

// matchSourceEvent finds the transaction by source id, falling back to the
// transaction id in the metadata. A fallback match back-fills the source id.
func (s *PaymentService) matchSourceEvent(ctx context.Context, evt *paymongo.Event) (*model.PaymentTransaction, error) {
	if evt.SourceID != "" {
		txn, err := s.payments.FindBySourceID(ctx, evt.SourceID)
		if !errors.Is(err, apperror.ErrNotFound) {
			return txn, err
		}
	}
	txn, err := s.byMetadata(ctx, evt)
	if err != nil {
		return nil, err
	}
	if txn.SourceId != "" && txn.SourceId != evt.SourceID {
		logger.Warn().Str("txn", txn.TransactionId).Str("source", evt.SourceID).Str("recorded_source", txn.SourceId).Msg("source does not belong to transaction")
		return nil, apperror.NewNotFound("transaction not found")
	}
	if txn.SourceId == "" && evt.SourceID != "" {
		if err := s.payments.Update(ctx, txn.ID, map[string]any{"source_id": evt.SourceID}); err != nil {
			return nil, err
		}
		txn.SourceId = evt.SourceID
		logger.Info().Str("txn", txn.TransactionId).Str("source", evt.SourceID).Msg("back-filled source id")
	}
	return txn, nil
}

// matchPaymentEvent finds the transaction by payment or intent id, then by the
// charged source, then by metadata. Missing gateway ids are back-filled.
func (s *PaymentService) matchPaymentEvent(ctx context.Context, evt *paymongo.Event) (*model.PaymentTransaction, error) {
	txn, err := s.payments.FindByGatewayID(ctx, evt.ResourceID, evt.PaymentIntentID)
	if err == nil {
		return txn, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if evt.SourceID != "" {
		txn, err = s.payments.FindBySourceID(ctx, evt.SourceID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}
	if txn == nil {
		if txn, err = s.byMetadata(ctx, evt); err != nil {
			return nil, err
		}
	}

	fields := map[string]any{}
	if txn.PaymentId == "" {
		fields["payment_id"] = evt.ResourceID
		txn.PaymentId = evt.ResourceID
	}
	if txn.PaymentIntentId == "" && evt.PaymentIntentID != "" {
		fields["payment_intent_id"] = evt.PaymentIntentID
		txn.PaymentIntentId = evt.PaymentIntentID
	}
	if len(fields) > 0 {
		if err := s.payments.Update(ctx, txn.ID, fields); err != nil {
			return nil, err
		}
		logger.Info().Str("txn", txn.TransactionId).Str("payment", evt.ResourceID).Msg("back-filled gateway ids")
	}
	return txn, nil
}

func (s *PaymentService) byMetadata(ctx context.Context, evt *paymongo.Event) (*model.PaymentTransaction, error) {
	id := evt.TransactionID()
	if id == "" {
		return nil, apperror.NewNotFound("transaction not found")
	}
	return s.payments.FindByTransactionID(ctx, id)
}

func toMinor(txn *model.PaymentTransaction) int64 {
	return pricing.ToMinor(txn.Amount)
}
