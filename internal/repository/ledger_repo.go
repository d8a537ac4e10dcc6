package repository

import (
	"context"
	"time"

	"dailypos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerRepository is the read side of order capture used by reporting.
type LedgerRepository interface {
	// PaymentsBetween returns payments created in [from, to] with their order,
	// the order's tax type and creator preloaded.
	PaymentsBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]model.Payment, error)
	TaxTypes(ctx context.Context, tx *gorm.DB) ([]model.TaxType, error)
	// DashboardStats reads the all-time counters, paid orders created since
	// the given instant and the item quantities per product.
	DashboardStats(ctx context.Context, since time.Time) (*DashboardStats, error)
}

// DashboardStats is the raw material of the dashboard. Bucketing by day and
// week happens in the service, in the register's time zone.
type DashboardStats struct {
	Revenue  decimal.Decimal // sum of paid order totals
	Orders   int64
	Products int64
	Paid     []PaidOrder
	Demand   []ProductDemand
}

type PaidOrder struct {
	CreatedAt time.Time
	Total     decimal.Decimal
}

// ProductDemand is the quantity ordered of one product over every order
// that was not cancelled.
type ProductDemand struct {
	Category string
	Product  string
	Quantity int64
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) PaymentsBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := conn(ctx, r.db, tx).
		Preload("Order.TaxType").
		Preload("Order.CreatedBy").
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *ledgerRepo) TaxTypes(ctx context.Context, tx *gorm.DB) ([]model.TaxType, error) {
	var types []model.TaxType
	err := conn(ctx, r.db, tx).Order("label ASC").Find(&types).Error
	return types, err
}

func (r *ledgerRepo) DashboardStats(ctx context.Context, since time.Time) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var out DashboardStats

	var agg struct{ Revenue decimal.NullDecimal }
	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderPaid).
		Select("SUM(total) AS revenue").
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	out.Revenue = agg.Revenue.Decimal
	if err := db.Model(&model.Order{}).Count(&out.Orders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Count(&out.Products).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Order{}).
		Select("created_at, total").
		Where("status = ? AND created_at >= ?", model.OrderPaid, since.UTC()).
		Order("created_at ASC").
		Scan(&out.Paid).Error; err != nil {
		return nil, err
	}

	err := db.Table("order_items").
		Select("categories.name AS category, products.name AS product, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("orders.status <> ?", model.OrderCancelled).
		Group("categories.id, categories.name, products.id, products.name").
		Scan(&out.Demand).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
