package paymongo

import (
	"encoding/json"
	"errors"
)

// Resource is the JSON:API object every endpoint returns under "data".
type Resource[T any] struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes T      `json:"attributes"`
}

type envelope[T any] struct {
	Data Resource[T] `json:"data"`
}

type request[T any] struct {
	Data struct {
		Attributes T `json:"attributes"`
	} `json:"data"`
}

func newRequest[T any](attrs T) request[T] {
	var r request[T]
	r.Data.Attributes = attrs
	return r
}

type errorBody struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func parseErrorBody(body []byte) (code, detail string) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Errors) == 0 {
		return "", ""
	}
	return eb.Errors[0].Code, eb.Errors[0].Detail
}

// Intent statuses
const (
	IntentAwaitingPaymentMethod = "awaiting_payment_method"
	IntentAwaitingNextAction    = "awaiting_next_action"
	IntentProcessing            = "processing"
	IntentSucceeded             = "succeeded"
	IntentCancelled             = "cancelled"
)

// Source statuses
const (
	SourcePending    = "pending"
	SourceChargeable = "chargeable"
	SourceCancelled  = "cancelled"
	SourceExpired    = "expired"
	SourcePaid       = "paid"
	SourceFailed     = "failed"
)

// Payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type intentRequest struct {
	Amount               int64             `json:"amount"`
	Currency             string            `json:"currency"`
	Description          string            `json:"description,omitempty"`
	StatementDescriptor  string            `json:"statement_descriptor,omitempty"`
	PaymentMethodAllowed []string          `json:"payment_method_allowed"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

type IntentAttributes struct {
	Amount           int64                         `json:"amount"`
	Currency         string                        `json:"currency"`
	Description      string                        `json:"description"`
	Status           string                        `json:"status"`
	ClientKey        string                        `json:"client_key"`
	Metadata         Metadata                      `json:"metadata"`
	LastPaymentError json.RawMessage               `json:"last_payment_error"`
	Payments         []Resource[PaymentAttributes] `json:"payments"`
}

type Intent struct {
	Resource[IntentAttributes]
	Raw json.RawMessage `json:"-"`
}

// PaymentID returns the id of the most recent payment attached to the intent.
func (i *Intent) PaymentID() string {
	if n := len(i.Attributes.Payments); n > 0 {
		return i.Attributes.Payments[n-1].ID
	}
	return ""
}

func (i *Intent) validate() error {
	if i.ID == "" || i.Attributes.Status == "" {
		return errors.New("payment intent is missing id or status")
	}
	return nil
}

type Redirect struct {
	Success     string `json:"success"`
	Failed      string `json:"failed"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

type sourceRequest struct {
	Type     string            `json:"type"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Redirect Redirect          `json:"redirect"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type SourceAttributes struct {
	Type     string   `json:"type"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Status   string   `json:"status"`
	Redirect Redirect `json:"redirect"`
	Metadata Metadata `json:"metadata"`
}

type Source struct {
	Resource[SourceAttributes]
	Raw json.RawMessage `json:"-"`
}

func (s *Source) validate() error {
	if s.ID == "" || s.Attributes.Status == "" {
		return errors.New("source is missing id or status")
	}
	return nil
}

type SourceRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type chargeRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Source      SourceRef         `json:"source"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type PaymentAttributes struct {
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	Source          *SourceRef `json:"source"`
	PaymentIntentID string     `json:"payment_intent_id"`
	FailedMessage   string     `json:"failed_message"`
	Metadata        Metadata   `json:"metadata"`
	PaidAt          int64      `json:"paid_at"`
}

type Payment struct {
	Resource[PaymentAttributes]
	Raw json.RawMessage `json:"-"`
}

func (p *Payment) validate() error {
	if p.ID == "" || p.Attributes.Status == "" {
		return errors.New("payment is missing id or status")
	}
	return nil
}
