package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailypos/internal/clock"
	"dailypos/internal/config"
	"dailypos/internal/infra"
	"dailypos/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	engine  *gin.Engine
	db      *gorm.DB
	clk     *clock.Fake
	product model.Product
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/token/", map[string]string{"username": username, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Access
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infra.NewDatabase("sqlite:" + filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range []model.User{
		{Username: "alice", PasswordHash: string(hash), Role: model.RoleCashier, Active: true},
		{Username: "root", PasswordHash: string(hash), Role: model.RoleAdmin, Active: true},
	} {
		require.NoError(t, db.Create(&u).Error)
	}
	cat := model.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&cat).Error)
	product := model.Product{Name: "Espresso", CategoryID: cat.ID, Price: decimal.RequireFromString("5.00"), IsAvailable: true}
	require.NoError(t, db.Create(&product).Error)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		Timezone:           "Europe/Paris",
		CurrencyLabel:      "EUR",
		BusinessName:       "Test Bistro",
	}
	clk := clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, cfg.Location()))
	engine := New(cfg, Deps{DB: db, Clock: clk})
	return &testEnv{engine: engine, db: db, clk: clk, product: product}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, map[string]any{"date": "2026-03-10", "status": "not_started", "timezone": "Europe/Paris"}, body["business_day"])

	token := env.login(t, "alice")
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/reports/daily-pos/start/", nil, token).Code)
	body = decodeMap(t, env.do(t, http.MethodGet, "/health", nil, ""))
	assert.Equal(t, "ongoing", body["business_day"].(map[string]any)["status"])

	w = env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dailypos_http_requests_total")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/reports/daily-pos/", nil, "").Code)

	admin := env.login(t, "root")
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/reports/daily-pos/", nil, admin).Code)

	cashier := env.login(t, "alice")
	assert.Equal(t, http.StatusForbidden,
		env.do(t, http.MethodPost, "/api/tax-types", map[string]any{"type": "VAT 20%", "percent": 20}, cashier).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/tax-types", nil, cashier).Code)

	w := env.do(t, http.MethodPost, "/api/token/", map[string]string{"username": "alice", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFullDayCycle(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.login(t, "root")
	cashier := env.login(t, "alice")

	// admin defines the rate
	w := env.do(t, http.MethodPost, "/api/tax-types", map[string]any{"type": "VAT 10%", "percent": 10}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	taxTypeID := decodeMap(t, w)["id"].(string)

	// start
	w = env.do(t, http.MethodPost, "/api/reports/daily-pos/start/", nil, cashier)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "ongoing", decodeMap(t, w)["closing_status"])

	w = env.do(t, http.MethodPost, "/api/reports/daily-pos/start/", nil, cashier)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeMap(t, w), "report")

	// sell
	env.clk.Advance(10 * time.Minute)
	w = env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"items":          []map[string]any{{"product_id": env.product.ID.String(), "quantity": 2}},
		"tax_type_id":    taxTypeID,
		"order_type":     "takeaway",
		"payment_method": "card",
	}, cashier)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := decodeMap(t, w)["id"].(string)

	// exports are refused while the day is open
	w = env.do(t, http.MethodGet, "/api/reports/daily-pos/pdf/", nil, cashier)
	assert.Equal(t, http.StatusConflict, w.Code)

	// close
	env.clk.Advance(8 * time.Hour)
	w = env.do(t, http.MethodPost, "/api/reports/daily-pos/close/", map[string]string{"date": "2026-03-10"}, cashier)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := w.Body.String()
	closedBody := decodeMap(t, w)
	assert.Equal(t, "snapshot", closedBody["source"])
	assert.Equal(t, "alice", closedBody["closed_by"])
	totals := closedBody["totals"].(map[string]any)
	assert.EqualValues(t, 1, totals["ticket_count"])
	assert.Equal(t, 10.0, totals["total_ttc"])

	// frozen reads equal the close response
	w = env.do(t, http.MethodGet, "/api/reports/daily-pos/?date=2026-03-10", nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, closed, w.Body.String())

	// the guard refuses further writes
	w = env.do(t, http.MethodPost, "/api/payments", map[string]any{"order_id": orderID, "method": "cash", "amount": 1}, cashier)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodPost, "/api/orders/"+orderID+"/items", map[string]any{"product_id": env.product.ID.String(), "quantity": 1}, cashier)
	assert.Equal(t, http.StatusConflict, w.Code)

	// exports
	w = env.do(t, http.MethodGet, "/api/reports/daily/pdf/2026-03-10/", nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "daily-pos-report-2026-03-10.pdf")

	w = env.do(t, http.MethodGet, "/api/reports/daily-pos/pdf/?date=2026-03-10&format=csv&mode=simple", nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "takeaway,1,10.00")

	// email without SMTP
	w = env.do(t, http.MethodPost, "/api/reports/daily-pos/email/", map[string]string{"date": "2026-03-10", "to": "owner@example.com"}, cashier)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// history
	w = env.do(t, http.MethodGet, "/api/reports/daily-pos/history/", nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeMap(t, w)
	assert.EqualValues(t, 1, history["total"])
}

func TestStartDay_YesterdayIsRejected(t *testing.T) {
	env := setupTestEnv(t)
	cashier := env.login(t, "alice")

	w := env.do(t, http.MethodPost, "/api/reports/daily-pos/start/", map[string]string{"date": "2026-03-09"}, cashier)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/reports/daily-pos/?date=2026-03-11", nil, cashier)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStats_AnyAuthenticatedUser(t *testing.T) {
	env := setupTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/dashboard-stats/", nil, "").Code)

	cashier := env.login(t, "alice")
	w := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"items":          []map[string]any{{"product_id": env.product.ID.String(), "quantity": 2}},
		"payment_method": "cash",
	}, cashier)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/dashboard-stats/", nil, env.login(t, "root"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.Equal(t, 10.0, body["total_revenue"])
	assert.Equal(t, 1.0, body["total_orders"])
	assert.Equal(t, []any{map[string]any{"date": "2026-03-10", "revenue": 10.0}}, body["daily_revenue"])
}

func TestOrderStatusAndLists(t *testing.T) {
	env := setupTestEnv(t)
	cashier := env.login(t, "alice")

	w := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product_id": env.product.ID.String(), "quantity": 1}},
	}, cashier)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeMap(t, w)["id"].(string)

	w = env.do(t, http.MethodPatch, "/api/orders/"+id+"/status", map[string]any{"status": "cancelled"}, cashier)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decodeMap(t, w)["status"])

	w = env.do(t, http.MethodPost, "/api/payments", map[string]any{"order_id": id, "method": "cash", "amount": "5.00"}, cashier)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/orders?status=cancelled", nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeMap(t, w)["total"])

	w = env.do(t, http.MethodGet, "/api/payments?order_id="+id, nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decodeMap(t, w)["total"])
}
