package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type SemaphoreConfig struct {
	URL        string
	APIKey     string
	SenderName string
}

// SMSChannel sends text messages through the Semaphore API.
type SMSChannel struct {
	cfg SemaphoreConfig
}

func NewSMSChannel(cfg SemaphoreConfig) *SMSChannel {
	return &SMSChannel{cfg: cfg}
}

func (s *SMSChannel) Name() string { return "sms" }

func (s *SMSChannel) Accepts(r Recipient) bool {
	return s.cfg.APIKey != "" && r.AllowSMS && CleanNumber(r.Mobile) != ""
}

// CleanNumber drops everything except digits and a plus sign.
func CleanNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, number)
}

func (s *SMSChannel) Send(ctx context.Context, r Recipient, m Message) error {
	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("apikey", s.cfg.APIKey)
	args.Set("number", CleanNumber(r.Mobile))
	args.Set("message", m.Text)
	args.Set("sendername", s.cfg.SenderName)

	status, body, errs := fiber.Post(s.cfg.URL).Form(args).Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("semaphore responded %d: %s", status, body)
	}
	return nil
}
