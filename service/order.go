package service

import (
	"context"
	"fmt"
	"laundry_service/apperror"
	"laundry_service/constants"
	"laundry_service/model"
	"laundry_service/notify"
	"laundry_service/pricing"
	"laundry_service/repository"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var minQuantity = decimal.RequireFromString("0.1")

type OrderService struct {
	orders  *repository.OrderRepository
	catalog *repository.CatalogRepository
	baskets *repository.BasketRepository
	users   *repository.UserRepository
	pricing *pricing.Engine
	collab  Collaborators
	appName string
}

func NewOrderService(db *gorm.DB, engine *pricing.Engine, collab Collaborators, appName string) *OrderService {
	return &OrderService{
		orders:  repository.NewOrderRepository(db),
		catalog: repository.NewCatalogRepository(db),
		baskets: repository.NewBasketRepository(db),
		users:   repository.NewUserRepository(db),
		pricing: engine,
		collab:  collab.withDefaults(),
		appName: appName,
	}
}

func (s *OrderService) Pricing() *pricing.Engine { return s.pricing }

func validateQuantity(field string, q decimal.Decimal) error {
	if q.LessThan(minQuantity) {
		return apperror.FieldError(field, "quantity must be at least 0.1")
	}
	if !q.Equal(q.Round(2)) {
		return apperror.FieldError(field, "quantity must have at most 2 decimal places")
	}
	return nil
}

func validatePickup(date, time, address string) error {
	fields := map[string]string{}
	if strings.TrimSpace(date) == "" {
		fields["pickupDate"] = "pickup date is required"
	}
	if strings.TrimSpace(time) == "" {
		fields["pickupTime"] = "pickup time is required"
	}
	if strings.TrimSpace(address) == "" {
		fields["pickupAddress"] = "pickup address is required"
	}
	if len(fields) > 0 {
		return apperror.NewValidation(constants.INVALID_INPUT, fields)
	}
	return nil
}

// PlaceOrder prices the items against current catalog prices and persists the
// order atomically. Confirmation and the order.placed event follow the commit.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, input model.PlaceOrderInput) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperror.FieldError("items", "at least one item is required")
	}
	if err := validatePickup(input.PickupDate, input.PickupTime, input.PickupAddress); err != nil {
		return nil, err
	}
	if !slices.Contains(constants.PaymentMethods, input.PaymentMethod) {
		return nil, apperror.FieldError("paymentMethod", "unsupported payment method")
	}

	ids := make([]uint, 0, len(input.Items))
	for i, item := range input.Items {
		if err := validateQuantity(fmt.Sprintf("items.%d.quantity", i), item.Quantity); err != nil {
			return nil, err
		}
		ids = append(ids, item.ServiceId)
	}
	services, err := s.catalog.GetActiveMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.LineItem, 0, len(input.Items))
	for i, item := range input.Items {
		svc, ok := services[item.ServiceId]
		if !ok {
			return nil, apperror.FieldError(fmt.Sprintf("items.%d.serviceId", i), "service is not available")
		}
		lines = append(lines, pricing.LineItem{
			UnitPrice: svc.Price,
			Quantity:  item.Quantity,
			AddonIDs:  item.Addons,
			Rush:      item.IsRushService,
		})
	}
	totals := s.pricing.ComputeTotals(lines, input.IsRushService)

	order := &model.Order{
		UserId:              userID,
		PickupDate:          input.PickupDate,
		PickupTime:          input.PickupTime,
		PickupAddress:       input.PickupAddress,
		SpecialInstructions: input.SpecialInstructions,
		IsRushService:       totals.Rush,
		PromoCode:           input.PromoCode,
		Subtotal:            totals.Subtotal,
		AddonsTotal:         totals.AddonsTotal,
		RushFee:             totals.RushFee,
		Discount:            totals.Discount,
		Total:               totals.Total,
		Status:              constants.ORDER_PENDING,
		PaymentStatus:       constants.PAYMENT_UNPAID,
		PaymentMethod:       input.PaymentMethod,
	}
	for i, item := range input.Items {
		line := totals.Lines[i]
		order.Items = append(order.Items, model.OrderItem{
			ServiceId:     item.ServiceId,
			Quantity:      item.Quantity,
			UnitPrice:     services[item.ServiceId].Price,
			TotalPrice:    line.Total,
			Addons:        append([]int{}, item.Addons...),
			AddonsTotal:   line.AddonsTotal,
			IsRushService: line.Rush,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	for i := range order.Items {
		svc := services[order.Items[i].ServiceId]
		order.Items[i].Service = &svc
	}

	logger.Info().Str("order", order.OrderNumber).Uint("user_id", userID).Str("total", order.Total.StringFixed(2)).Msg("order placed")
	publish(ctx, s.collab.Events, constants.EVENT_ORDER_PLACED, order.OrderNumber, order)
	s.notifyOrder(ctx, order, notify.OrderConfirmation)
	return order, nil
}

func (s *OrderService) notifyOrder(ctx context.Context, order *model.Order, build func(string, *model.User, *model.Order) (notify.Message, error)) {
	user, err := s.users.FindByID(context.WithoutCancel(ctx), order.UserId)
	if err != nil {
		logger.Warn().Err(err).Str("order", order.OrderNumber).Msg("notification skipped, user not loaded")
		return
	}
	msg, err := build(s.appName, user, order)
	if err != nil {
		logger.Error().Err(err).Str("order", order.OrderNumber).Msg("notification skipped, render failed")
		return
	}
	s.collab.Notifier.Notify(notify.RecipientFor(user), msg)
}

// CheckoutBasket turns the user's basket into one order. All items must share the
// same pickup details; instructions are merged. Only the checked-out items are
// removed, and only after the order committed.
func (s *OrderService) CheckoutBasket(ctx context.Context, userID uint, input model.CheckoutInput) (*model.Order, error) {
	items, err := s.baskets.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.NewValidation(constants.BASKET_EMPTY, map[string]string{"basket": constants.BASKET_EMPTY})
	}

	first := items[0]
	var instructions []string
	placed := model.PlaceOrderInput{
		PickupDate:    first.PickupDate,
		PickupTime:    first.PickupTime,
		PickupAddress: first.PickupAddress,
		PromoCode:     input.PromoCode,
		PaymentMethod: input.PaymentMethod,
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.PickupDate != first.PickupDate || item.PickupTime != first.PickupTime || item.PickupAddress != first.PickupAddress {
			return nil, apperror.NewValidation("Basket items have different pickup details", map[string]string{
				"basket": "all basket items must share the same pickup date, time and address",
			})
		}
		if note := strings.TrimSpace(item.SpecialInstructions); note != "" && !slices.Contains(instructions, note) {
			instructions = append(instructions, note)
		}
		placed.Items = append(placed.Items, model.OrderItemInput{
			ServiceId:     item.ServiceId,
			Quantity:      item.Quantity,
			Addons:        item.Addons,
			IsRushService: item.IsRushService,
		})
		ids = append(ids, item.ID)
	}
	placed.SpecialInstructions = strings.Join(instructions, "\n")

	order, err := s.PlaceOrder(ctx, userID, placed)
	if err != nil {
		return nil, err
	}
	if err := s.baskets.RemoveMany(context.WithoutCancel(ctx), userID, ids); err != nil {
		logger.Error().Err(err).Str("order", order.OrderNumber).Msg("clear basket after checkout failed")
	}
	return order, nil
}

// UpdateStatus applies an admin status change and tells the customer about it.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*model.Order, error) {
	order, changed, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}
	logger.Info().Str("order", order.OrderNumber).Str("status", status).Msg("order status changed")
	publish(ctx, s.collab.Events, constants.EVENT_ORDER_STATUS_CHANGED, order.OrderNumber, map[string]any{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	})
	s.notifyOrder(ctx, order, notify.OrderStatusUpdate)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint, limit int) ([]model.Order, error) {
	return s.orders.FindByUser(ctx, userID, limit)
}

// GetOrder loads an order; userID 0 is used for admin lookups.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	return s.orders.FindByID(ctx, orderID, userID)
}
