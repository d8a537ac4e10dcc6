package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products. Catalog writes belong to the catalog service;
// this backend only reads them.
type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null"`
}

// Product is read when an order item is created to snapshot its price.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"not null"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsAvailable bool            `gorm:"not null;default:true"`

	Category *Category `gorm:"foreignKey:CategoryID"`
}

// TaxType is a named VAT rate. Editing Percent never recomputes past orders.
type TaxType struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Label   string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	Percent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}
