package notify

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "notify").Logger()

// Recipient is a user together with the notification preferences stored on them.
type Recipient struct {
	Name       string
	Email      string
	Mobile     string
	AllowEmail bool
	AllowSMS   bool
}

// Message is rendered once and handed to every channel the recipient accepts.
type Message struct {
	Kind      string
	Subject   string
	Text      string
	HTML      string
	QRContent string
}

type Channel interface {
	Name() string
	Accepts(r Recipient) bool
	Send(ctx context.Context, r Recipient, m Message) error
}

// Notifier delivers messages in the background. Delivery failures are retried a few
// times and then only logged; they never reach the caller.
type Notifier struct {
	channels []Channel
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	wg       sync.WaitGroup
}

func New(channels ...Channel) *Notifier {
	return &Notifier{
		channels: channels,
		attempts: 3,
		backoff:  2 * time.Second,
		timeout:  30 * time.Second,
	}
}

// WithRetry overrides attempts and the initial backoff, which doubles per attempt.
func (n *Notifier) WithRetry(attempts int, backoff time.Duration) *Notifier {
	if attempts < 1 {
		attempts = 1
	}
	n.attempts = attempts
	n.backoff = backoff
	return n
}

func (n *Notifier) Notify(r Recipient, m Message) {
	for _, ch := range n.channels {
		if !ch.Accepts(r) {
			continue
		}
		n.wg.Add(1)
		go func(ch Channel) {
			defer n.wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Str("channel", ch.Name()).Msg("notification panicked")
				}
			}()
			n.deliver(ch, r, m)
		}(ch)
	}
}

func (n *Notifier) deliver(ch Channel, r Recipient, m Message) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	wait := n.backoff
	var err error
retry:
	for attempt := 1; attempt <= n.attempts; attempt++ {
		if err = ch.Send(ctx, r, m); err == nil {
			logger.Info().Str("channel", ch.Name()).Str("kind", m.Kind).Int("attempt", attempt).Msg("notification sent")
			return
		}
		logger.Warn().Err(err).Str("channel", ch.Name()).Str("kind", m.Kind).Int("attempt", attempt).Msg("notification failed")
		if attempt == n.attempts {
			break
		}
		select {
		case <-time.After(wait):
			wait *= 2
		case <-ctx.Done():
			err = ctx.Err()
			break retry
		}
	}
	logger.Error().Err(err).Str("channel", ch.Name()).Str("kind", m.Kind).Msg("notification dropped")
}

// Wait blocks until in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
