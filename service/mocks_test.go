package service

import (
	"context"
	"encoding/json"
	"fmt"
	"laundry_service/constants"
	"laundry_service/database"
	"laundry_service/events"
	"laundry_service/model"
	"laundry_service/notify"
	"laundry_service/paymongo"
	"laundry_service/pricing"
	"laundry_service/rdb"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeGateway records calls and answers from configurable state.
type fakeGateway struct {
	mu sync.Mutex

	intentErr    error
	sourceErr    error
	chargeErr    error
	intentStatus string
	sourceStatus string
	chargeStatus string
	intentPayID  string

	intentCalls   int
	sourceCalls   int
	chargeCalls   int
	retrieveCalls int
	lastMetadata  map[string]any
	lastRedirect  paymongo.Redirect
	lastAmount    decimal.Decimal
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intentStatus: paymongo.IntentAwaitingPaymentMethod,
		sourceStatus: paymongo.SourcePending,
		chargeStatus: paymongo.PaymentPaid,
	}
}

func raw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount decimal.Decimal, _ string, metadata map[string]any) (*paymongo.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intentCalls++
	g.lastMetadata = metadata
	g.lastAmount = amount
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	intent := &paymongo.Intent{}
	intent.ID = fmt.Sprintf("pi_%d", g.intentCalls)
	intent.Attributes.Status = paymongo.IntentAwaitingPaymentMethod
	intent.Attributes.ClientKey = intent.ID + "_client"
	intent.Attributes.Amount = pricing.ToMinor(amount)
	intent.Raw = raw(map[string]any{"id": intent.ID})
	return intent, nil
}

func (g *fakeGateway) CreateSource(_ context.Context, method string, amount decimal.Decimal, redirect paymongo.Redirect, metadata map[string]any) (*paymongo.Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sourceCalls++
	g.lastMetadata = metadata
	g.lastRedirect = redirect
	if g.sourceErr != nil {
		return nil, g.sourceErr
	}
	source := &paymongo.Source{}
	source.ID = fmt.Sprintf("src_%d", g.sourceCalls)
	source.Attributes.Type = method
	source.Attributes.Status = paymongo.SourcePending
	source.Attributes.Amount = pricing.ToMinor(amount)
	source.Attributes.Redirect = paymongo.Redirect{CheckoutURL: "https://pm.link/" + source.ID}
	source.Raw = raw(map[string]any{"id": source.ID})
	return source, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (*paymongo.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieveCalls++
	intent := &paymongo.Intent{}
	intent.ID = id
	intent.Attributes.Status = g.intentStatus
	if g.intentPayID != "" {
		intent.Attributes.Payments = []paymongo.Resource[paymongo.PaymentAttributes]{{ID: g.intentPayID}}
	}
	return intent, nil
}

func (g *fakeGateway) RetrieveSource(_ context.Context, id string) (*paymongo.Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieveCalls++
	source := &paymongo.Source{}
	source.ID = id
	source.Attributes.Status = g.sourceStatus
	return source, nil
}

func (g *fakeGateway) CreateCharge(_ context.Context, amount decimal.Decimal, sourceID, _ string, _ map[string]any) (*paymongo.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chargeCalls++
	g.lastAmount = amount
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	payment := &paymongo.Payment{}
	payment.ID = fmt.Sprintf("pay_%d", g.chargeCalls)
	payment.Attributes.Status = g.chargeStatus
	payment.Attributes.Source = &paymongo.SourceRef{ID: sourceID, Type: "gcash"}
	payment.Raw = raw(map[string]any{"id": payment.ID})
	return payment, nil
}

func (g *fakeGateway) counts() (intents, sources, charges int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.intentCalls, g.sourceCalls, g.chargeCalls
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *fakeNotifier) Notify(_ notify.Recipient, m notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, m)
}

func (n *fakeNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.messages {
		if m.Kind == kind {
			c++
		}
	}
	return c
}

type fixture struct {
	db       *gorm.DB
	gateway  *fakeGateway
	events   *events.Recorder
	notifier *fakeNotifier
	orders   *OrderService
	payments *PaymentService
	user     *model.User
	services []model.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{db: db, gateway: newFakeGateway(), events: &events.Recorder{}, notifier: &fakeNotifier{}}
	collab := Collaborators{
		Locker:      rdb.NewMemoryLocker(),
		Broadcaster: rdb.NewMemoryBroadcaster(),
		Events:      f.events,
		Notifier:    f.notifier,
	}
	f.orders = NewOrderService(db, pricing.NewEngine(pricing.DefaultCatalog()), collab, "Laundromat")
	f.payments = NewPaymentService(db, f.gateway, collab, PaymentConfig{
		AppURL:           "https://laundry.example.com",
		AppName:          "Laundromat",
		WebhookSecret:    "whsk_test",
		RequireSignature: true,
	})

	f.user = &model.User{Name: "Juan", Email: "juan@example.com", Password: "x", Role: constants.ROLE_CUSTOMER, AllowEmailNotifications: true}
	if err := db.Create(f.user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	for _, s := range []model.Service{
		{Name: "Wash & Fold", Slug: "wash-fold", Price: decimal.NewFromInt(100), Unit: "kg", IsActive: true},
		{Name: "Dry Clean", Slug: "dry-clean", Price: decimal.NewFromInt(50), Unit: "item", IsActive: true},
		{Name: "Premium Wash", Slug: "premium-wash", Price: decimal.NewFromInt(500), Unit: "load", IsActive: true},
		{Name: "Retired", Slug: "retired", Price: decimal.NewFromInt(10), Unit: "kg", IsActive: false},
	} {
		svc := s
		if err := db.Create(&svc).Error; err != nil {
			t.Fatalf("Failed to seed service: %v", err)
		}
		f.services = append(f.services, svc)
	}
	// gorm skips zero-value bools on create, so flip the retired one explicitly
	db.Model(&model.Service{}).Where("slug = ?", "retired").Update("is_active", false)
	return f
}

func (f *fixture) placeOrder(t *testing.T, input model.PlaceOrderInput) *model.Order {
	t.Helper()
	order, err := f.orders.PlaceOrder(context.Background(), f.user.ID, input)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	return order
}

func (f *fixture) simpleOrder(t *testing.T, method string) *model.Order {
	t.Helper()
	return f.placeOrder(t, model.PlaceOrderInput{
		PickupDate:    "2024-01-15",
		PickupTime:    "09:00",
		PickupAddress: "123 Rizal St",
		PaymentMethod: method,
		Items: []model.OrderItemInput{
			{ServiceId: f.services[2].ID, Quantity: decimal.NewFromInt(1), IsRushService: true},
		},
	})
}

func (f *fixture) reloadTxn(t *testing.T, id string) *model.PaymentTransaction {
	t.Helper()
	var txn model.PaymentTransaction
	if err := f.db.Where("transaction_id = ?", id).First(&txn).Error; err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	return &txn
}

func (f *fixture) reloadOrder(t *testing.T, id uint) *model.Order {
	t.Helper()
	var order model.Order
	if err := f.db.First(&order, id).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	return &order
}

func (f *fixture) reloadUser(t *testing.T) *model.User {
	t.Helper()
	var user model.User
	if err := f.db.First(&user, f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &user
}
