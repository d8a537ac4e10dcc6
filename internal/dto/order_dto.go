package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ChoiceRequest struct {
	Name  string          `json:"name"  validate:"required"`
	Price decimal.Decimal `json:"price"`
}

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Choices   []ChoiceRequest `json:"choices"    validate:"dive"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"          validate:"required,min=1,dive"`
	TaxTypeID     *string            `json:"tax_type_id"    validate:"omitempty,uuid"`
	OrderType     *string            `json:"order_type"     validate:"omitempty,max=50"`
	PaymentMethod *string            `json:"payment_method" validate:"omitempty,max=20"`
}

type CreatePaymentRequest struct {
	OrderID string          `json:"order_id" validate:"required,uuid"`
	Method  string          `json:"method"   validate:"required,oneof=cash card"`
	Amount  decimal.Decimal `json:"amount"   validate:"required,gt=0"`
}

// UpdateOrderStatusRequest changes the kitchen status of an order. paid is
// only ever set by recording a payment.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress ready cancelled"`
}

type TaxTypeRequest struct {
	Label   string          `json:"type"    validate:"required,max=100"`
	Percent decimal.Decimal `json:"percent" validate:"min=0,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	CreatedAt string              `json:"created_at"`
	Status    string              `json:"status"`
	TaxTypeID *string             `json:"tax_type_id"`
	OrderType *string             `json:"order_type"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	TaxAmount decimal.Decimal     `json:"tax_amount"`
	Total     decimal.Decimal     `json:"total"`
	Items     []OrderItemResponse `json:"items"`
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at"`
}

type TaxTypeResponse struct {
	ID      string          `json:"id"`
	Label   string          `json:"type"`
	Percent decimal.Decimal `json:"percent"`
}

type OrderPage struct {
	Data       []OrderResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type PaymentPage struct {
	Data       []PaymentResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
