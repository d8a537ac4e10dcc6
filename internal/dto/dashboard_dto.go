package dto

import "dailypos/internal/money"

// DashboardStats is the back-office overview. Revenue only counts paid
// orders, bucketed by the order's creation day in the register's zone.
type DashboardStats struct {
	TotalRevenue           money.Amount     `json:"total_revenue"`
	TotalOrders            int64            `json:"total_orders"`
	TotalProducts          int64            `json:"total_products"`
	DailyRevenue           []DailyRevenue   `json:"daily_revenue"`
	WeeklyRevenue          []WeeklyRevenue  `json:"weekly_revenue"`
	MostDemandedByCategory []CategoryDemand `json:"most_demanded_by_category"`
}

type DailyRevenue struct {
	Date    string       `json:"date"`
	Revenue money.Amount `json:"revenue"`
}

// WeeklyRevenue is keyed by the Monday that starts the week.
type WeeklyRevenue struct {
	Week    string       `json:"week"`
	Revenue money.Amount `json:"revenue"`
}

type CategoryDemand struct {
	Category string `json:"category"`
	Product  string `json:"product"`
	TotalQty int64  `json:"total_qty"`
}
