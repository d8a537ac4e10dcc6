package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dailypos/internal/infra"
	"dailypos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase("sqlite:" + filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func utc(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC) }

func openDay(t *testing.T, repo ClosingRepository, date string, opening time.Time) *model.DailyClosing {
	t.Helper()
	row := &model.DailyClosing{ReportDate: date, StartDate: date, OpeningTime: &opening}
	require.NoError(t, repo.Create(context.Background(), nil, row))
	return row
}

func closeDay(t *testing.T, repo ClosingRepository, row *model.DailyClosing, at time.Time) {
	t.Helper()
	row.ClosingTime = &at
	row.ClosedAt = &at
	row.Payload = datatypes.JSON(`{"report_date":"` + row.ReportDate + `"}`)
	ok, err := repo.MarkClosed(context.Background(), nil, row)
	require.NoError(t, err)
	require.True(t, ok)
}

// ── ClosingRepository ────────────────────────────────────────────────────────

func TestClosingRepo_FindByDateMissingIsNil(t *testing.T) {
	repo := NewClosingRepository(newTestDB(t))

	row, err := repo.FindByDate(context.Background(), nil, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, row)

	row, err = repo.LockByDate(context.Background(), nil, "2026-03-10", "SHARE")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestClosingRepo_ReportDateIsUnique(t *testing.T) {
	repo := NewClosingRepository(newTestDB(t))
	openDay(t, repo, "2026-03-10", utc(8, 0))

	dup := &model.DailyClosing{ReportDate: "2026-03-10", StartDate: "2026-03-10"}
	assert.Error(t, repo.Create(context.Background(), nil, dup))
}

func TestClosingRepo_MarkClosedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewClosingRepository(db)
	user := model.User{Username: "alice", PasswordHash: "x", Role: model.RoleCashier}
	require.NoError(t, db.Create(&user).Error)

	row := openDay(t, repo, "2026-03-10", utc(8, 0))
	row.ClosedByID = &user.ID
	closeDay(t, repo, row, utc(17, 0))

	found, err := repo.FindByDate(context.Background(), nil, "2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.DayClosed, found.State())
	require.NotNil(t, found.ClosedBy)
	assert.Equal(t, "alice", found.ClosedBy.Username)
	assert.JSONEq(t, `{"report_date":"2026-03-10"}`, string(found.Payload))

	later := utc(18, 0)
	found.ClosingTime = &later
	ok, err := repo.MarkClosed(context.Background(), nil, found)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosingRepo_ListClosed(t *testing.T) {
	repo := NewClosingRepository(newTestDB(t))
	for _, date := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		row := openDay(t, repo, date, utc(8, 0))
		closeDay(t, repo, row, utc(17, 0))
	}
	openDay(t, repo, "2026-03-11", utc(8, 0))

	rows, total, err := repo.ListClosed(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-10", rows[0].ReportDate)
	assert.Equal(t, "2026-03-09", rows[1].ReportDate)

	rows, _, err = repo.ListClosed(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-03-08", rows[0].ReportDate)
}

func TestClosingRepo_TransactionRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewClosingRepository(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		row := &model.DailyClosing{ReportDate: "2026-03-10", StartDate: "2026-03-10"}
		require.NoError(t, repo.Create(ctx, tx, row))
		found, err := repo.LockByDate(ctx, tx, "2026-03-10", "UPDATE")
		require.NoError(t, err)
		require.NotNil(t, found)
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	found, err := repo.FindByDate(ctx, nil, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, found)
}

// ── LedgerRepository ─────────────────────────────────────────────────────────

func TestLedgerRepo_PaymentsBetweenIsInclusive(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	tt := model.TaxType{Label: "VAT 10%", Percent: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&tt).Error)
	order := &model.Order{CreatedAt: utc(8, 0), Status: model.OrderPaid, TaxTypeID: &tt.ID, Total: decimal.NewFromInt(11)}
	require.NoError(t, orders.Create(ctx, nil, order))
	for _, at := range []time.Time{utc(7, 59), utc(8, 0), utc(12, 0), utc(17, 0), utc(17, 1)} {
		require.NoError(t, orders.CreatePayment(ctx, nil, &model.Payment{
			OrderID: order.ID, Method: model.PaymentCash, Amount: decimal.NewFromInt(1), CreatedAt: at,
		}))
	}

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	payments, err := ledger.PaymentsBetween(ctx, nil, utc(8, 0).In(paris), utc(17, 0).In(paris))
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.True(t, payments[0].CreatedAt.Equal(utc(8, 0)))
	assert.True(t, payments[2].CreatedAt.Equal(utc(17, 0)))
	require.NotNil(t, payments[0].Order)
	require.NotNil(t, payments[0].Order.TaxType)
	assert.Equal(t, "VAT 10%", payments[0].Order.TaxType.Label)
}

// ── OrderRepository / CatalogRepository / UserRepository ─────────────────────

func TestOrderRepo_ItemsAndTotals(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	cat := model.Category{Name: "Food"}
	require.NoError(t, db.Create(&cat).Error)
	p := model.Product{Name: "Croissant", CategoryID: cat.ID, Price: decimal.RequireFromString("1.20"), IsAvailable: true}
	require.NoError(t, db.Create(&p).Error)

	o := &model.Order{CreatedAt: utc(9, 0), Status: model.OrderInProgress}
	require.NoError(t, orders.Create(ctx, nil, o))
	item := &model.OrderItem{
		OrderID: o.ID, ProductID: p.ID, Quantity: 2,
		Price: p.Price, Subtotal: decimal.RequireFromString("2.40"),
		Choices:   []model.OptionChoice{{Name: "Butter", Price: decimal.Zero}},
		CreatedAt: utc(9, 0),
	}
	require.NoError(t, orders.CreateItem(ctx, nil, item))

	o.Total = decimal.RequireFromString("2.40")
	o.Subtotal = o.Total
	o.Status = model.OrderPaid
	require.NoError(t, orders.UpdateTotals(ctx, nil, o))

	got, err := orders.FindByID(ctx, nil, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.OrderPaid, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("2.40")))
	require.Len(t, got.Items, 1)
	require.Len(t, got.Items[0].Choices, 1)
	assert.Equal(t, "Butter", got.Items[0].Choices[0].Name)
}

func TestCatalogRepo_TaxTypes(t *testing.T) {
	catalog := NewCatalogRepository(newTestDB(t))
	ctx := context.Background()

	tt := &model.TaxType{Label: "Reduced", Percent: decimal.RequireFromString("5.5")}
	require.NoError(t, catalog.CreateTaxType(ctx, tt))

	found, err := catalog.FindTaxTypeByLabel(ctx, "Reduced")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tt.ID, found.ID)

	tt.Percent = decimal.NewFromInt(7)
	require.NoError(t, catalog.UpdateTaxType(ctx, tt))
	found, err = catalog.FindTaxType(ctx, nil, tt.ID)
	require.NoError(t, err)
	assert.True(t, found.Percent.Equal(decimal.NewFromInt(7)))

	missing, err := catalog.FindTaxTypeByLabel(ctx, "Ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_UpsertAndInactive(t *testing.T) {
	users := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, users.Upsert(ctx, &model.User{Username: "bob", PasswordHash: "h1", Role: model.RoleCashier, Active: true}))
	require.NoError(t, users.Upsert(ctx, &model.User{Username: "bob", PasswordHash: "h2", Role: model.RoleAdmin, Active: true}))

	u, err := users.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "h2", u.PasswordHash)
	assert.Equal(t, model.RoleAdmin, u.Role)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "bob", byID.Username)
}

func TestOrderRepo_UpdateStatusIsConditional(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	o := &model.Order{CreatedAt: utc(9, 0), Status: model.OrderInProgress}
	require.NoError(t, orders.Create(ctx, nil, o))

	moved, err := orders.UpdateStatus(ctx, nil, o.ID, model.OrderReady, model.OrderInProgress)
	require.NoError(t, err)
	assert.True(t, moved)

	// no longer in_progress, so the same move matches nothing
	moved, err = orders.UpdateStatus(ctx, nil, o.ID, model.OrderReady, model.OrderInProgress)
	require.NoError(t, err)
	assert.False(t, moved)

	got, err := orders.FindByID(ctx, nil, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderReady, got.Status)
}

func TestLedgerRepo_DashboardStats(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	cat := model.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&cat).Error)
	tea := model.Product{Name: "Tea", CategoryID: cat.ID, Price: decimal.RequireFromString("3.00"), IsAvailable: true}
	require.NoError(t, db.Create(&tea).Error)

	add := func(at time.Time, status string, qty int) {
		total := decimal.NewFromInt(int64(3 * qty))
		o := &model.Order{CreatedAt: at, Status: status, Total: total, Subtotal: total}
		require.NoError(t, orders.Create(ctx, nil, o))
		require.NoError(t, orders.CreateItem(ctx, nil, &model.OrderItem{
			OrderID: o.ID, ProductID: tea.ID, Quantity: qty, Price: tea.Price, Subtotal: total, CreatedAt: at,
		}))
	}
	add(utc(8, 0).AddDate(0, 0, -100), model.OrderPaid, 1)
	add(utc(9, 0), model.OrderPaid, 2)
	add(utc(10, 0), model.OrderInProgress, 1)
	add(utc(11, 0), model.OrderCancelled, 4)

	stats, err := ledger.DashboardStats(ctx, utc(0, 0).AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, "9.00", stats.Revenue.StringFixed(2))
	assert.EqualValues(t, 4, stats.Orders)
	assert.EqualValues(t, 1, stats.Products)
	require.Len(t, stats.Paid, 1)
	assert.True(t, stats.Paid[0].CreatedAt.Equal(utc(9, 0)))
	assert.Equal(t, "6.00", stats.Paid[0].Total.StringFixed(2))
	assert.Equal(t, []ProductDemand{{Category: "Drinks", Product: "Tea", Quantity: 4}}, stats.Demand)
}
