package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BasketItem struct {
	DTO
	UserId              uint                     `gorm:"index;not null" json:"userId"`
	ServiceId           uint                     `gorm:"not null" json:"serviceId"`
	Service             Service                  `gorm:"foreignKey:ServiceId" json:"service"`
	Quantity            decimal.Decimal          `gorm:"type:decimal(8,2);not null" json:"quantity"`
	PickupDate          string                   `gorm:"size:10;not null" json:"pickupDate"`
	PickupTime          string                   `gorm:"size:20;not null" json:"pickupTime"`
	PickupAddress       string                   `gorm:"not null" json:"pickupAddress"`
	IsRushService       bool                     `gorm:"not null;default:false" json:"isRushService"`
	SpecialInstructions string                   `json:"specialInstructions"`
	Addons              datatypes.JSONSlice[int] `json:"addons"`
}

type BasketItemInput struct {
	ServiceId           uint            `json:"serviceId" validate:"required,gt=0"`
	Quantity            decimal.Decimal `json:"quantity" validate:"-" copier:"-"`
	PickupDate          string          `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	PickupTime          string          `json:"pickupTime" validate:"required,max=20"`
	PickupAddress       string          `json:"pickupAddress" validate:"required,max=500"`
	IsRushService       bool            `json:"isRushService"`
	SpecialInstructions string          `json:"specialInstructions" validate:"max=1000"`
	Addons              []int           `json:"addons" validate:"omitempty,dive,gt=0" copier:"-"`
}

type UpdateBasketItemInput struct {
	Quantity            *decimal.Decimal `json:"quantity" validate:"-" copier:"-"`
	PickupDate          *string          `json:"pickupDate" validate:"omitempty,datetime=2006-01-02"`
	PickupTime          *string          `json:"pickupTime" validate:"omitempty,max=20"`
	PickupAddress       *string          `json:"pickupAddress" validate:"omitempty,max=500"`
	IsRushService       *bool            `json:"isRushService"`
	SpecialInstructions *string          `json:"specialInstructions" validate:"omitempty,max=1000"`
	Addons              *[]int           `json:"addons" validate:"omitempty,dive,gt=0" copier:"-"`
}

type CheckoutInput struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=gcash grab_pay paymaya card billease cash"`
	PromoCode     string `json:"promoCode" validate:"max=50"`
}
