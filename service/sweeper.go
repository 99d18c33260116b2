package service

import (
	"context"
	"time"
)

// SweepStale reconciles open transactions nobody polled for a while, so payments
// whose webhook never arrived still settle. Every checked transaction that stays
// open is touched so the next run reaches the ones behind it. It returns how many
// were checked.
func (s *PaymentService) SweepStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	txns, err := s.payments.FindStale(ctx, s.now().Add(-staleAfter), limit)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for i := range txns {
		txn := &txns[i]
		if err := s.reconcile(ctx, txn); err != nil {
			logger.Warn().Err(err).Str("txn", txn.TransactionId).Msg("sweep reconcile failed")
		}
		if err := s.payments.Touch(ctx, txn.ID, now); err != nil {
			logger.Warn().Err(err).Str("txn", txn.TransactionId).Msg("sweep touch failed")
		}
	}
	if len(txns) > 0 {
		logger.Info().Int("checked", len(txns)).Msg("stale payment sweep finished")
	}
	return len(txns), nil
}
