package repository

import (
	"context"

	"dailypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository is the write side of order capture. Every method that
// mutates is called inside the transaction that ran the day guard.
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error
	UpdateTotals(ctx context.Context, tx *gorm.DB, o *model.Order) error
	CreatePayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	// UpdateStatus moves an order from one of the from statuses to status
	// and reports whether the row matched.
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, from ...string) (bool, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

// OrderFilter pages orders newest first. Empty Status lists every order.
type OrderFilter struct {
	Status      string
	Page, Limit int
}

// PaymentFilter pages payments newest first, optionally for one order.
type PaymentFilter struct {
	OrderID     *uuid.UUID
	Page, Limit int
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return conn(ctx, r.db, tx).Omit("CreatedBy", "TaxType", "Items").Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := conn(ctx, r.db, tx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("TaxType").
		First(&o, "id = ?", id).Error
	return notFoundAsNil(&o, err)
}

func (r *orderRepo) CreateItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error {
	return conn(ctx, r.db, tx).Omit("Product").Create(item).Error
}

func (r *orderRepo) UpdateTotals(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return conn(ctx, r.db, tx).Model(&model.Order{}).Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":     o.Status,
			"subtotal":   o.Subtotal,
			"tax_amount": o.TaxAmount,
			"total":      o.Total,
		}).Error
}

func (r *orderRepo) CreatePayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return conn(ctx, r.db, tx).Omit("Order").Create(p).Error
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, from ...string) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", status)
	return res.RowsAffected == 1, res.Error
}

func (r *orderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	var (
		orders []model.Order
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("created_at DESC").Order("id").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, int64, error) {
	var (
		payments []model.Payment
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.Payment{})
	if f.OrderID != nil {
		q = q.Where("order_id = ?", *f.OrderID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Order("id").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&payments).Error
	return payments, total, err
}
