package helper

import (
	"context"
	"laundry_service/service"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var paymentScheduler gocron.Scheduler

// StartPaymentSweepScheduler periodically reconciles open transactions that went
// quiet. A zero interval leaves the sweeper off.
func StartPaymentSweepScheduler(payments *service.PaymentService, interval, staleAfter time.Duration) {
	if interval <= 0 {
		log.Println("[CRON] payment sweep disabled")
		return
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}
	paymentScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := payments.SweepStale(ctx, staleAfter, 50); err != nil {
				log.Printf("[CRON] payment sweep failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Printf("[CRON] payment sweep every %s", interval)
}

func StopPaymentSweepScheduler() {
	if paymentScheduler != nil {
		_ = paymentScheduler.Shutdown()
	}
}
