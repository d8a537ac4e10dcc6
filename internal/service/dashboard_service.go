package service

import (
	"context"
	"sort"
	"time"

	"dailypos/internal/clock"
	"dailypos/internal/dto"
	"dailypos/internal/money"
	"dailypos/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dailyRevenueSpan  = 30 * 24 * time.Hour
	weeklyRevenueSpan = 12 * 7 * 24 * time.Hour
)

// DashboardService builds the back-office overview. It is a plain read of
// the ledger and is independent of the day lifecycle.
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

type dashboardService struct {
	ledger repository.LedgerRepository
	clk    clock.Clock
}

func NewDashboardService(ledger repository.LedgerRepository, clk clock.Clock) DashboardService {
	return &dashboardService{ledger: ledger, clk: clk}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	now := s.clk.Now()
	raw, err := s.ledger.DashboardStats(ctx, now.Add(-weeklyRevenueSpan))
	if err != nil {
		return nil, err
	}

	loc := s.clk.Location()
	dailyFrom := now.Add(-dailyRevenueSpan)
	daily := make(map[string]decimal.Decimal)
	weekly := make(map[string]decimal.Decimal)
	for _, o := range raw.Paid {
		local := o.CreatedAt.In(loc)
		week := weekStart(local).Format(clock.DateLayout)
		weekly[week] = weekly[week].Add(o.Total)
		if !o.CreatedAt.Before(dailyFrom) {
			day := local.Format(clock.DateLayout)
			daily[day] = daily[day].Add(o.Total)
		}
	}

	out := &dto.DashboardStats{
		TotalRevenue:           money.NewAmount(raw.Revenue),
		TotalOrders:            raw.Orders,
		TotalProducts:          raw.Products,
		DailyRevenue:           make([]dto.DailyRevenue, 0, len(daily)),
		WeeklyRevenue:          make([]dto.WeeklyRevenue, 0, len(weekly)),
		MostDemandedByCategory: topByCategory(raw.Demand),
	}
	for _, day := range sortedKeys(daily) {
		out.DailyRevenue = append(out.DailyRevenue, dto.DailyRevenue{Date: day, Revenue: money.NewAmount(daily[day])})
	}
	for _, week := range sortedKeys(weekly) {
		out.WeeklyRevenue = append(out.WeeklyRevenue, dto.WeeklyRevenue{Week: week, Revenue: money.NewAmount(weekly[week])})
	}
	return out, nil
}

// weekStart is local midnight of the Monday on or before t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// topByCategory keeps the most ordered product of each category, sorted by
// category name. Ties go to the product name that sorts first.
func topByCategory(demand []repository.ProductDemand) []dto.CategoryDemand {
	best := make(map[string]repository.ProductDemand)
	for _, d := range demand {
		cur, ok := best[d.Category]
		if !ok || d.Quantity > cur.Quantity || (d.Quantity == cur.Quantity && d.Product < cur.Product) {
			best[d.Category] = d
		}
	}
	out := make([]dto.CategoryDemand, 0, len(best))
	for _, cat := range sortedKeys(best) {
		d := best[cat]
		out = append(out, dto.CategoryDemand{Category: d.Category, Product: d.Product, TotalQty: d.Quantity})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
