package paymongo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

const SignatureHeader = "Paymongo-Signature"

// Webhook event types handled by the service.
const (
	EventSourceChargeable = "source.chargeable"
	EventPaymentPaid      = "payment.paid"
	EventPaymentFailed    = "payment.failed"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// Sign returns the hex HMAC-SHA256 of payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against body. Two header shapes are accepted: a bare
// hex digest of the body, or the provider's "t=<ts>,te=<sig>,li=<sig>" form where the
// digest covers "<ts>.<body>".
func VerifySignature(secret string, body []byte, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}
	if secret == "" {
		return ErrInvalidSignature
	}

	if !strings.Contains(header, "=") {
		if hmac.Equal([]byte(Sign(secret, body)), []byte(strings.ToLower(header))) {
			return nil
		}
		return ErrInvalidSignature
	}

	var timestamp string
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "te", "li":
			if v != "" {
				candidates = append(candidates, strings.ToLower(v))
			}
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return ErrInvalidSignature
	}
	expected := []byte(Sign(secret, []byte(timestamp+"."+string(body))))
	for _, c := range candidates {
		if hmac.Equal(expected, []byte(c)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

type webhookBody struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

type eventResource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Amount          int64      `json:"amount"`
		Status          string     `json:"status"`
		Metadata        Metadata   `json:"metadata"`
		Source          *SourceRef `json:"source"`
		PaymentIntentID string     `json:"payment_intent_id"`
	} `json:"attributes"`
}

// Event is a decoded webhook delivery.
type Event struct {
	ID              string
	Type            string
	ResourceID      string
	ResourceType    string
	Status          string
	Amount          int64
	Metadata        Metadata
	SourceID        string
	PaymentIntentID string
	Raw             json.RawMessage
}

// TransactionID is the local transaction id carried in the resource metadata.
func (e *Event) TransactionID() string {
	return e.Metadata.Get("transaction_id")
}

// ParseEvent decodes the webhook envelope {data:{attributes:{type, data:{id, attributes}}}}.
func ParseEvent(body []byte) (*Event, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if wb.Data.Attributes.Type == "" || len(wb.Data.Attributes.Data) == 0 {
		return nil, ErrInvalidPayload
	}
	var res eventResource
	if err := json.Unmarshal(wb.Data.Attributes.Data, &res); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if res.ID == "" {
		return nil, ErrInvalidPayload
	}

	evt := &Event{
		ID:              wb.Data.ID,
		Type:            wb.Data.Attributes.Type,
		ResourceID:      res.ID,
		ResourceType:    res.Type,
		Status:          res.Attributes.Status,
		Amount:          res.Attributes.Amount,
		Metadata:        res.Attributes.Metadata,
		PaymentIntentID: res.Attributes.PaymentIntentID,
		Raw:             body,
	}
	if res.Attributes.Source != nil {
		evt.SourceID = res.Attributes.Source.ID
	}
	if evt.ResourceType == "source" || strings.HasPrefix(evt.ResourceID, "src_") {
		evt.SourceID = evt.ResourceID
	}
	return evt, nil
}
