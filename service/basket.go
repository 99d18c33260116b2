package service

import (
	"context"
	"laundry_service/apperror"
	"laundry_service/model"
	"laundry_service/pricing"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// BasketLine is a basket item with its price breakdown.
type BasketLine struct {
	model.BasketItem
	Pricing pricing.LineTotals `json:"pricing"`
}

type BasketSummary struct {
	Items     []BasketLine    `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Addons    decimal.Decimal `json:"addonsTotal"`
	RushFee   decimal.Decimal `json:"rushFee"`
	Total     decimal.Decimal `json:"total"`
}

func (s *OrderService) Basket(ctx context.Context, userID uint) (*BasketSummary, error) {
	items, err := s.baskets.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, basketLineItem(item))
	}
	totals := s.pricing.ComputeTotals(lines, false)

	summary := &BasketSummary{
		Items:     make([]BasketLine, 0, len(items)),
		ItemCount: len(items),
		Subtotal:  totals.Subtotal,
		Addons:    totals.AddonsTotal,
		RushFee:   totals.RushFee,
		Total:     totals.Total,
	}
	for i, item := range items {
		summary.Items = append(summary.Items, BasketLine{BasketItem: item, Pricing: totals.Lines[i]})
	}
	return summary, nil
}

func basketLineItem(item model.BasketItem) pricing.LineItem {
	return pricing.LineItem{
		UnitPrice: item.Service.Price,
		Quantity:  item.Quantity,
		AddonIDs:  item.Addons,
		Rush:      item.IsRushService,
	}
}

func (s *OrderService) AddToBasket(ctx context.Context, userID uint, input model.BasketItemInput) (*BasketLine, error) {
	if err := validateQuantity("quantity", input.Quantity); err != nil {
		return nil, err
	}
	if err := validatePickup(input.PickupDate, input.PickupTime, input.PickupAddress); err != nil {
		return nil, err
	}
	svc, err := s.catalog.Get(ctx, input.ServiceId)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperror.FieldError("serviceId", "service is not available")
	}

	var item model.BasketItem
	if err := copier.Copy(&item, &input); err != nil {
		return nil, err
	}
	item.UserId = userID
	item.Quantity = input.Quantity
	item.Addons = append([]int{}, input.Addons...)
	if err := s.baskets.Add(ctx, &item); err != nil {
		return nil, err
	}
	item.Service = *svc
	return &BasketLine{BasketItem: item, Pricing: s.pricing.Line(basketLineItem(item), false)}, nil
}

func (s *OrderService) UpdateBasketItem(ctx context.Context, userID, itemID uint, input model.UpdateBasketItemInput) (*BasketLine, error) {
	item, err := s.baskets.Get(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if input.Quantity != nil {
		if err := validateQuantity("quantity", *input.Quantity); err != nil {
			return nil, err
		}
		item.Quantity = *input.Quantity
	}
	if input.Addons != nil {
		item.Addons = append([]int{}, (*input.Addons)...)
	}
	if err := copier.CopyWithOption(item, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	if err := validatePickup(item.PickupDate, item.PickupTime, item.PickupAddress); err != nil {
		return nil, err
	}
	if err := s.baskets.Save(ctx, item); err != nil {
		return nil, err
	}
	return &BasketLine{BasketItem: *item, Pricing: s.pricing.Line(basketLineItem(*item), false)}, nil
}

func (s *OrderService) RemoveBasketItem(ctx context.Context, userID, itemID uint) error {
	return s.baskets.Remove(ctx, itemID, userID)
}

func (s *OrderService) ClearBasket(ctx context.Context, userID uint) error {
	return s.baskets.Clear(ctx, userID)
}
