package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Order struct {
	DTO
	OrderNumber          string          `gorm:"size:20;uniqueIndex;not null" json:"orderNumber"` // ORD-2024-001
	UserId               uint            `gorm:"index;not null" json:"userId"`
	User                 *User           `gorm:"foreignKey:UserId" json:"user,omitempty"`
	PickupDate           string          `gorm:"size:10;not null" json:"pickupDate"`
	PickupTime           string          `gorm:"size:20;not null" json:"pickupTime"`
	PickupAddress        string          `gorm:"not null" json:"pickupAddress"`
	SpecialInstructions  string          `json:"specialInstructions"`
	IsRushService        bool            `gorm:"not null;default:false" json:"isRushService"`
	PromoCode            string          `gorm:"size:50" json:"promoCode"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	AddonsTotal          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"addonsTotal"`
	RushFee              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rushFee"`
	Discount             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	Total                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status               string          `gorm:"size:20;index;not null" json:"status"`
	PaymentStatus        string          `gorm:"size:20;not null" json:"paymentStatus"`
	PaymentMethod        string          `gorm:"size:20" json:"paymentMethod"`
	PaidAt               *time.Time      `json:"paidAt,omitempty"`
	LoyaltyPointsAwarded int             `gorm:"not null;default:0" json:"loyaltyPointsAwarded"`
	Items                []OrderItem     `gorm:"foreignKey:OrderId" json:"items"`
}

type OrderItem struct {
	DTO
	OrderId       uint                     `gorm:"index;not null" json:"orderId"`
	ServiceId     uint                     `gorm:"not null" json:"serviceId"`
	Service       *Service                 `gorm:"foreignKey:ServiceId" json:"service,omitempty"`
	Quantity      decimal.Decimal          `gorm:"type:decimal(8,2);not null" json:"quantity"`
	UnitPrice     decimal.Decimal          `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice    decimal.Decimal          `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Addons        datatypes.JSONSlice[int] `json:"addons"`
	AddonsTotal   decimal.Decimal          `gorm:"type:decimal(10,2);not null" json:"addonsTotal"`
	IsRushService bool                     `gorm:"not null;default:false" json:"isRushService"`
}

// OrderSequence holds the per-year order number counter.
type OrderSequence struct {
	Year      int `gorm:"column:seq_year;primaryKey;autoIncrement:false"`
	LastValue int `gorm:"not null"`
}

type OrderItemInput struct {
	ServiceId     uint            `json:"serviceId" validate:"required,gt=0"`
	Quantity      decimal.Decimal `json:"quantity" validate:"-"`
	Addons        []int           `json:"addons" validate:"omitempty,dive,gt=0"`
	IsRushService bool            `json:"isRushService"`
}

type PlaceOrderInput struct {
	PickupDate          string           `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	PickupTime          string           `json:"pickupTime" validate:"required,max=20"`
	PickupAddress       string           `json:"pickupAddress" validate:"required,max=500"`
	SpecialInstructions string           `json:"specialInstructions" validate:"max=1000"`
	IsRushService       bool             `json:"isRushService"`
	PromoCode           string           `json:"promoCode" validate:"max=50"`
	PaymentMethod       string           `json:"paymentMethod" validate:"required,oneof=gcash grab_pay paymaya card billease cash"`
	Items               []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}
