package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentTransaction records one attempt to collect payment through the gateway.
type PaymentTransaction struct {
	DTO
	TransactionId   string            `gorm:"size:30;uniqueIndex;not null" json:"transactionId"` // TXN-20240115-AB12CD34
	OrderId         *uint             `gorm:"index" json:"orderId"`
	Order           *Order            `gorm:"foreignKey:OrderId" json:"order,omitempty"`
	OpenOrderId     *uint             `gorm:"uniqueIndex" json:"-"` // set while pending/processing
	UserId          uint              `gorm:"index;not null" json:"userId"`
	Amount          decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string            `gorm:"size:3;not null" json:"currency"`
	Status          string            `gorm:"size:20;index;not null" json:"status"`
	PaymentMethod   string            `gorm:"size:20" json:"paymentMethod"`
	PaymentIntentId string            `gorm:"size:100;index" json:"paymentIntentId"`
	SourceId        string            `gorm:"size:100;index" json:"sourceId"`
	PaymentId       string            `gorm:"size:100;index" json:"paymentId"`
	ClientKey       string            `json:"clientKey"`
	CheckoutUrl     string            `json:"checkoutUrl"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	ResponseData    datatypes.JSON    `json:"-"`
	PaidAt          *time.Time        `json:"paidAt,omitempty"`
}

type CreateIntentInput struct {
	OrderId uint `json:"orderId" validate:"required,gt=0"`
}

type CreateSourceInput struct {
	TransactionId string `json:"transactionId" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=gcash grab_pay paymaya"`
}

// PaymentMethod is an entry of the payment method listing.
type PaymentMethod struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	UsesSource  bool   `json:"usesSource"`
}
