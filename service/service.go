package service

import (
	"context"
	"laundry_service/events"
	"laundry_service/notify"
	"laundry_service/rdb"
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "service").Logger()

// Notifier is the fire-and-forget notification dispatcher.
type Notifier interface {
	Notify(r notify.Recipient, m notify.Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(notify.Recipient, notify.Message) {}

// Collaborators are the side-effect sinks shared by the services. Zero values are
// replaced with in-process defaults.
type Collaborators struct {
	Locker      rdb.Locker
	Broadcaster rdb.Broadcaster
	Events      events.Publisher
	Notifier    Notifier
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Locker == nil {
		c.Locker = rdb.NewMemoryLocker()
	}
	if c.Broadcaster == nil {
		c.Broadcaster = rdb.NewMemoryBroadcaster()
	}
	if c.Events == nil {
		c.Events = events.LogPublisher{}
	}
	if c.Notifier == nil {
		c.Notifier = nopNotifier{}
	}
	return c
}

// publish sends a domain event after commit. Failures are logged only.
func publish(ctx context.Context, p events.Publisher, eventType, key string, payload any) {
	if err := p.Publish(context.WithoutCancel(ctx), events.New(eventType, key, payload)); err != nil {
		logger.Error().Err(err).Str("type", eventType).Str("key", key).Msg("publish event failed")
	}
}
