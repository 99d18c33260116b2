package model

import "github.com/shopspring/decimal"

// Service is a priced laundry offering in the catalog.
type Service struct {
	DTO
	Name        string          `gorm:"size:150;not null" json:"name"`
	Slug        string          `gorm:"size:170;uniqueIndex;not null" json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit        string          `gorm:"size:20;not null;default:kg" json:"unit"`
	Icon        string          `gorm:"size:16" json:"icon"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
}
