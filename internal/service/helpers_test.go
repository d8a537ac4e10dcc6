package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dailypos/internal/clock"
	"dailypos/internal/dto"
	"dailypos/internal/infra"
	"dailypos/internal/model"
	"dailypos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var paris = mustLoad("Europe/Paris")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

// ── Test environment ─────────────────────────────────────────────────────────

type testEnv struct {
	db      *gorm.DB
	clk     *clock.Fake
	closing ClosingService
	orders  OrderService
	taxes   TaxTypeService
	stats   DashboardService
	catalog repository.CatalogRepository
	cache   *memCache
	mailer  *fakeMailer

	cashier  Actor
	espresso model.Product
	vat10    model.TaxType
}

// newTestDB opens a fresh SQLite file so every test gets an isolated,
// migrated schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase("sqlite:" + filepath.Join(t.TempDir(), "dailypos.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clk := clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, paris))

	closings := repository.NewClosingRepository(db)
	ledger := repository.NewLedgerRepository(db)
	orders := repository.NewOrderRepository(db)
	catalog := repository.NewCatalogRepository(db)

	env := &testEnv{db: db, clk: clk, catalog: catalog, cache: newMemCache(), mailer: &fakeMailer{}}

	user := model.User{Username: "alice", PasswordHash: "x", Role: model.RoleCashier, Active: true}
	require.NoError(t, db.Create(&user).Error)
	env.cashier = Actor{ID: user.ID, Username: user.Username, Role: user.Role}

	cat := model.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&cat).Error)
	env.espresso = model.Product{Name: "Espresso", CategoryID: cat.ID, Price: dec("5.00"), IsAvailable: true}
	require.NoError(t, db.Create(&env.espresso).Error)
	env.vat10 = model.TaxType{Label: "VAT 10%", Percent: dec("10")}
	require.NoError(t, catalog.CreateTaxType(context.Background(), &env.vat10))

	deps := ClosingDeps{
		Renderers: map[string]infra.ReportRenderer{
			"pdf": infra.NewPDFRenderer("Test Bistro", "EUR"),
			"csv": infra.NewCSVRenderer(),
		},
		Cache:    env.cache,
		Mailer:   env.mailer,
		Business: "Test Bistro",
	}
	guard := NewDayGuard(closings, clk, nil)
	env.closing = NewClosingService(closings, ledger, clk, deps)
	env.orders = NewOrderService(orders, catalog, guard, clk)
	env.taxes = NewTaxTypeService(catalog)
	env.stats = NewDashboardService(ledger, clk)
	return env
}

// paidOrder creates an order of qty espressos under VAT 10% paid in cash.
func (e *testEnv) paidOrder(t *testing.T, qty int) *dto.OrderResponse {
	t.Helper()
	tt := e.vat10.ID.String()
	resp, err := e.orders.Create(context.Background(), e.cashier, dto.CreateOrderRequest{
		Items:         []dto.OrderItemRequest{{ProductID: e.espresso.ID.String(), Quantity: qty}},
		TaxTypeID:     &tt,
		OrderType:     strPtr("dine_in"),
		PaymentMethod: strPtr("cash"),
	})
	require.NoError(t, err)
	return resp
}

// ── Fakes ────────────────────────────────────────────────────────────────────

type memCache struct {
	mu         sync.Mutex
	entries    map[string][]byte
	hits, puts int
}

func newMemCache() *memCache { return &memCache{entries: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return b, ok
}

func (c *memCache) Put(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
	c.puts++
}

type sentMail struct {
	to, subject, filename, contentType string
	attachment                         []byte
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendReport(to, subject, _ string, filename, contentType string, attachment []byte) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, filename: filename, contentType: contentType, attachment: attachment})
	return nil
}
