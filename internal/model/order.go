package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	OrderInProgress = "in_progress"
	OrderReady      = "ready"
	OrderPaid       = "paid"
	OrderCancelled  = "cancelled"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// Order is a customer ticket. Totals are tax-inclusive: Total is the sum of
// item subtotals and TaxAmount is extracted from it, so
// Subtotal + TaxAmount == Total after every recomputation.
type Order struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time  `gorm:"index"`
	CreatedByID *uuid.UUID `gorm:"type:uuid"`
	Status      string     `gorm:"type:varchar(20);not null;default:'in_progress'"`
	TaxTypeID   *uuid.UUID `gorm:"type:uuid;index"`
	// OrderType is an external classification (dine-in, takeaway, ...); nil
	// is reported as "undefined".
	OrderType *string         `gorm:"type:varchar(50)"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	CreatedBy *User       `gorm:"foreignKey:CreatedByID"`
	TaxType   *TaxType    `gorm:"foreignKey:TaxTypeID"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"`
}

// OptionChoice is a product option picked for an item, with its price delta.
type OptionChoice struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem snapshots the unit price at creation: product price plus the sum
// of choice deltas. Later product price changes never touch it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Choices   datatypes.JSONSlice[OptionChoice]
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Payment is immutable once created. An order may receive several.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method    string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `gorm:"index"`

	Order *Order `gorm:"foreignKey:OrderID"`
}
