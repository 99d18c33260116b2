package paymongo

import (
	"context"
	"encoding/json"
	"errors"
	"laundry_service/pricing"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "paymongo").Logger()

const (
	DefaultBaseURL = "https://api.paymongo.com/v1"
	Currency       = "PHP"
)

type Config struct {
	BaseURL             string
	SecretKey           string
	Timeout             time.Duration
	StatementDescriptor string
	IntentMethods       []string
}

// Client talks to the PayMongo REST API with the secret key as basic auth user.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if len(cfg.IntentMethods) == 0 {
		cfg.IntentMethods = []string{"card", "paymaya"}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg}
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(err)
	}
	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, transportError(context.DeadlineExceeded)
	}

	url := c.cfg.BaseURL + path
	var a *fiber.Agent
	if method == fiber.MethodGet {
		a = fiber.Get(url)
	} else {
		a = fiber.Post(url)
	}
	a.BasicAuth(c.cfg.SecretKey, "").
		Timeout(timeout).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if body != nil {
		a.JSON(body)
	}

	start := time.Now()
	status, resp, errs := a.Bytes()
	if len(errs) > 0 {
		err := transportError(errors.Join(errs...))
		logger.Error().Err(err).Str("op", op).Dur("elapsed", time.Since(start)).Msg("gateway request failed")
		return nil, err
	}
	if status < 200 || status > 299 {
		err := statusError(status, resp)
		logger.Warn().Str("op", op).Int("status", status).Str("kind", string(err.Kind)).Str("reason", err.Reason).Msg("gateway rejected request")
		return nil, err
	}
	logger.Debug().Str("op", op).Int("status", status).Dur("elapsed", time.Since(start)).Msg("gateway request ok")
	return resp, nil
}

func decodeResource[T any](body []byte) (Resource[T], error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return env.Data, decodeError("malformed response body", err)
	}
	return env.Data, nil
}

func decodeIntent(body []byte) (*Intent, error) {
	res, err := decodeResource[IntentAttributes](body)
	if err != nil {
		return nil, err
	}
	intent := &Intent{Resource: res, Raw: body}
	if err := intent.validate(); err != nil {
		return nil, decodeError(err.Error(), nil)
	}
	return intent, nil
}

func decodeSource(body []byte) (*Source, error) {
	res, err := decodeResource[SourceAttributes](body)
	if err != nil {
		return nil, err
	}
	source := &Source{Resource: res, Raw: body}
	if err := source.validate(); err != nil {
		return nil, decodeError(err.Error(), nil)
	}
	return source, nil
}

func decodePayment(body []byte) (*Payment, error) {
	res, err := decodeResource[PaymentAttributes](body)
	if err != nil {
		return nil, err
	}
	payment := &Payment{Resource: res, Raw: body}
	if err := payment.validate(); err != nil {
		return nil, decodeError(err.Error(), nil)
	}
	return payment, nil
}

// CreateIntent opens a payment intent for card and wallet payments.
func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, description string, metadata map[string]any) (*Intent, error) {
	body, err := c.do(ctx, "create_intent", fiber.MethodPost, "/payment_intents", newRequest(intentRequest{
		Amount:               pricing.ToMinor(amount),
		Currency:             Currency,
		Description:          description,
		StatementDescriptor:  c.cfg.StatementDescriptor,
		PaymentMethodAllowed: c.cfg.IntentMethods,
		Metadata:             FlattenMetadata(metadata),
	}))
	if err != nil {
		return nil, err
	}
	intent, err := decodeIntent(body)
	if err != nil {
		return nil, err
	}
	if intent.Attributes.ClientKey == "" {
		return nil, decodeError("payment intent is missing client_key", nil)
	}
	return intent, nil
}

// CreateSource starts an e-wallet checkout (gcash, grab_pay, paymaya).
func (c *Client) CreateSource(ctx context.Context, method string, amount decimal.Decimal, redirect Redirect, metadata map[string]any) (*Source, error) {
	body, err := c.do(ctx, "create_source", fiber.MethodPost, "/sources", newRequest(sourceRequest{
		Type:     method,
		Amount:   pricing.ToMinor(amount),
		Currency: Currency,
		Redirect: Redirect{Success: redirect.Success, Failed: redirect.Failed},
		Metadata: FlattenMetadata(metadata),
	}))
	if err != nil {
		return nil, err
	}
	source, err := decodeSource(body)
	if err != nil {
		return nil, err
	}
	if source.Attributes.Redirect.CheckoutURL == "" {
		return nil, decodeError("source is missing checkout_url", nil)
	}
	return source, nil
}

func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	body, err := c.do(ctx, "retrieve_intent", fiber.MethodGet, "/payment_intents/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodeIntent(body)
}

func (c *Client) RetrieveSource(ctx context.Context, id string) (*Source, error) {
	body, err := c.do(ctx, "retrieve_source", fiber.MethodGet, "/sources/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodeSource(body)
}

// CreateCharge creates a payment against a chargeable source.
func (c *Client) CreateCharge(ctx context.Context, amount decimal.Decimal, sourceID, description string, metadata map[string]any) (*Payment, error) {
	body, err := c.do(ctx, "create_charge", fiber.MethodPost, "/payments", newRequest(chargeRequest{
		Amount:      pricing.ToMinor(amount),
		Currency:    Currency,
		Description: description,
		Source:      SourceRef{ID: sourceID, Type: "source"},
		Metadata:    FlattenMetadata(metadata),
	}))
	if err != nil {
		return nil, err
	}
	return decodePayment(body)
}
