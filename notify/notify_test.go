package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"laundry_service/model"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

type fakeChannel struct {
	name    string
	accept  bool
	failFor int

	mu    sync.Mutex
	calls int
	sent  []Message
}

func (f *fakeChannel) Name() string             { return f.name }
func (f *fakeChannel) Accepts(r Recipient) bool { return f.accept }

func (f *fakeChannel) Send(_ context.Context, _ Recipient, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFor {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeChannel) snapshot() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, len(f.sent)
}

func TestNotifier(t *testing.T) {
	t.Run("Given a flaky channel When notifying Then it is retried until delivered", func(t *testing.T) {
		ch := &fakeChannel{name: "email", accept: true, failFor: 2}
		n := New(ch).WithRetry(3, time.Millisecond)

		n.Notify(Recipient{Email: "a@b.c", AllowEmail: true}, Message{Kind: KindOrderConfirmation})
		n.Wait()

		calls, sent := ch.snapshot()
		if calls != 3 || sent != 1 {
			t.Errorf("calls=%d sent=%d, want 3 and 1", calls, sent)
		}
	})

	t.Run("Given a channel that always fails When notifying Then the caller is unaffected and attempts are bounded", func(t *testing.T) {
		ch := &fakeChannel{name: "sms", accept: true, failFor: 100}
		n := New(ch).WithRetry(2, time.Millisecond)

		n.Notify(Recipient{}, Message{})
		n.Wait()

		if calls, sent := ch.snapshot(); calls != 2 || sent != 0 {
			t.Errorf("calls=%d sent=%d, want 2 and 0", calls, sent)
		}
	})

	t.Run("Given a recipient who opted out When notifying Then the channel is skipped", func(t *testing.T) {
		accepted := &fakeChannel{name: "email", accept: true}
		refused := &fakeChannel{name: "sms", accept: false}
		n := New(accepted, refused).WithRetry(1, 0)

		n.Notify(Recipient{}, Message{})
		n.Wait()

		if _, sent := accepted.snapshot(); sent != 1 {
			t.Errorf("accepted channel sent %d", sent)
		}
		if calls, _ := refused.snapshot(); calls != 0 {
			t.Errorf("refused channel called %d times", calls)
		}
	})
}

func sampleOrder() (*model.User, *model.Order) {
	user := &model.User{Name: "Juan", Email: "juan@example.com", Mobile: "0917-123 4567", AllowEmailNotifications: true}
	order := &model.Order{
		OrderNumber:   "ORD-2024-007",
		PickupDate:    "2024-01-15",
		PickupTime:    "10:00 AM",
		PickupAddress: "123 Rizal St",
		AddonsTotal:   decimal.NewFromInt(30),
		RushFee:       decimal.RequireFromString("62.5"),
		Total:         decimal.RequireFromString("342.5"),
		Status:        "ready",
		PaymentMethod: "gcash",
		PaymentStatus: "unpaid",
		Items: []model.OrderItem{
			{ServiceId: 1, Service: &model.Service{Name: "Wash & Fold"}, Quantity: decimal.NewFromInt(2), TotalPrice: decimal.NewFromInt(200)},
		},
	}
	return user, order
}

func TestMessages(t *testing.T) {
	t.Run("Given an order When building the confirmation Then text, html and qr content are filled", func(t *testing.T) {
		user, order := sampleOrder()
		msg, err := OrderConfirmation("Laundromat", user, order)
		if err != nil {
			t.Fatalf("OrderConfirmation() error = %v", err)
		}
		if msg.Subject != "Order Confirmation - ORD-2024-007" || msg.QRContent != "ORD-2024-007" {
			t.Errorf("unexpected message header %+v", msg)
		}
		for _, want := range []string{"Wash &amp; Fold", "PHP 342.50", "PHP 62.50", "cid:order_qr_code"} {
			if !strings.Contains(msg.HTML, want) {
				t.Errorf("html missing %q", want)
			}
		}
		if !strings.Contains(msg.Text, "Total: PHP 342.50") {
			t.Errorf("text = %q", msg.Text)
		}
	})

	t.Run("Given a status change When building the update Then the status sentence is used", func(t *testing.T) {
		user, order := sampleOrder()
		msg, err := OrderStatusUpdate("Laundromat", user, order)
		if err != nil {
			t.Fatalf("OrderStatusUpdate() error = %v", err)
		}
		if !strings.Contains(msg.Text, "ready for delivery") {
			t.Errorf("text = %q", msg.Text)
		}
		if StatusText("weird") != "Your order status has been updated to: weird" {
			t.Errorf("fallback text = %q", StatusText("weird"))
		}
	})
}

func TestEmailChannel(t *testing.T) {
	t.Run("Given a confirmation When sending Then the qr is embedded inline", func(t *testing.T) {
		var captured *gomail.Message
		ch := NewEmailChannel(SMTPConfig{Host: "smtp.local", Port: 587, From: "Laundromat <no-reply@laundromat.local>"})
		ch.send = func(m ...*gomail.Message) error {
			captured = m[0]
			return nil
		}
		user, order := sampleOrder()
		msg, _ := OrderConfirmation("Laundromat", user, order)

		if !ch.Accepts(RecipientFor(user)) {
			t.Fatal("email channel should accept an opted-in user")
		}
		if err := ch.Send(context.Background(), RecipientFor(user), msg); err != nil {
			t.Fatalf("Send() error = %v", err)
		}

		var raw bytes.Buffer
		if _, err := captured.WriteTo(&raw); err != nil {
			t.Fatalf("WriteTo() error = %v", err)
		}
		out := raw.String()
		for _, want := range []string{"Subject: Order Confirmation - ORD-2024-007", "Content-ID: <order_qr_code>", "image/png"} {
			if !strings.Contains(out, want) {
				t.Errorf("mime output missing %q", want)
			}
		}
	})

	t.Run("Given no smtp host When checking Then nothing is accepted", func(t *testing.T) {
		ch := NewEmailChannel(SMTPConfig{})
		if ch.Accepts(Recipient{Email: "a@b.c", AllowEmail: true}) {
			t.Error("unconfigured channel should not accept")
		}
	})
}

func TestSMSChannel(t *testing.T) {
	t.Run("Given semaphore is reachable When sending Then a form post with the cleaned number is made", func(t *testing.T) {
		var form url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			form, _ = url.ParseQuery(string(raw))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[{"message_id":1,"status":"Queued"}]`))
		}))
		defer srv.Close()

		ch := NewSMSChannel(SemaphoreConfig{URL: srv.URL, APIKey: "key", SenderName: "Laundry"})
		r := Recipient{Mobile: "0917-123 4567", AllowSMS: true}
		if !ch.Accepts(r) {
			t.Fatal("sms channel should accept")
		}
		if err := ch.Send(context.Background(), r, Message{Text: "hello"}); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if form.Get("number") != "09171234567" || form.Get("apikey") != "key" || form.Get("message") != "hello" || form.Get("sendername") != "Laundry" {
			t.Errorf("unexpected form %v", form)
		}
	})

	t.Run("Given semaphore rejects When sending Then an error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		ch := NewSMSChannel(SemaphoreConfig{URL: srv.URL, APIKey: "key"})
		if err := ch.Send(context.Background(), Recipient{Mobile: "0917"}, Message{Text: "x"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
