package infra

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailypos/internal/config"
	"dailypos/internal/dto"
	"dailypos/internal/money"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) money.Amount { return money.NewAmount(decimal.RequireFromString(s)) }

func sampleReport() dto.DetailedReport {
	opening := "2026-03-10T09:00:00.000+01:00"
	closing := "2026-03-10T18:00:00.000+01:00"
	closedBy := "alice"
	return dto.DetailedReport{
		ReportMode:    dto.ModeDetailed,
		StartDate:     "2026-03-10",
		ReportDate:    "2026-03-10",
		OpeningTime:   &opening,
		ClosingTime:   &closing,
		ClosedBy:      &closedBy,
		IsClosed:      true,
		IsStarted:     true,
		ClosingStatus: "closed",
		Source:        dto.SourceSnapshot,
		Tickets: []dto.TicketLine{{
			OrderID: "o-1", CreatedAt: "2026-03-10T09:05:00.000+01:00", CreatedByUsername: &closedBy,
			OrderType: "dine_in", TaxRate: amt("10"), HT: amt("100"), VAT: amt("10"), TTC: amt("110"),
		}},
		ByOrderType: []dto.OrderTypeRow{{Type: "dine_in", OrderCount: 1, TotalTTC: amt("110")}},
		ByTaxType: []dto.TaxTypeRow{{
			TaxTypeID: "t-1", TaxType: "VAT 10%", TaxRate: amt("10"), TicketCount: 1,
			TotalHT: amt("100"), TotalVAT: amt("10"), TotalTTC: amt("110"),
		}},
		PaymentMethods: []dto.PaymentMethodRow{{Method: "cash", TicketCount: 1, TotalAmount: amt("110")}},
		Totals: dto.Totals{
			TicketCount: 1, TotalRevenue: amt("110"), TotalVAT: amt("10"),
			TotalHT: amt("100"), TotalTTC: amt("110"), AverageTicket: amt("110"),
		},
	}
}

// ── Renderers ────────────────────────────────────────────────────────────────

func TestPDFRenderer_RendersBothModes(t *testing.T) {
	p := NewPDFRenderer("Test Bistro", "EUR")
	assert.Equal(t, "application/pdf", p.ContentType())
	assert.Equal(t, "pdf", p.Ext())

	detailed, err := p.Render(sampleReport(), dto.ModeDetailed)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(detailed, []byte("%PDF-")))

	simple, err := p.Render(sampleReport(), dto.ModeSimple)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(simple, []byte("%PDF-")))
	assert.NotEqual(t, detailed, simple)
}

func TestPDFRenderer_EmptyDay(t *testing.T) {
	body, err := NewPDFRenderer("Test Bistro", "EUR").Render(dto.DetailedReport{ReportDate: "2026-03-10"}, dto.ModeDetailed)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVRenderer_Detailed(t *testing.T) {
	body, err := NewCSVRenderer().Render(sampleReport(), dto.ModeDetailed)
	require.NoError(t, err)

	records := readCSV(t, body)
	assert.Equal(t, []string{"report_date", "2026-03-10"}, records[0])
	assert.Contains(t, records, []string{"1", "100.00", "10.00", "110.00", "110.00"})
	assert.Contains(t, records, []string{"VAT 10%", "10.00", "1", "100.00", "10.00", "110.00"})
	assert.Contains(t, records, []string{"cash", "1", "110.00"})
	assert.Contains(t, string(body), "o-1,2026-03-10T09:05:00.000+01:00,alice,dine_in")
}

func TestCSVRenderer_Simple(t *testing.T) {
	body, err := NewCSVRenderer().Render(sampleReport(), dto.ModeSimple)
	require.NoError(t, err)

	records := readCSV(t, body)
	assert.Contains(t, records, []string{"report_mode", "simple"})
	assert.Contains(t, records, []string{"dine_in", "1", "110.00"})
	assert.NotContains(t, string(body), "payment_method")
}

// ── Export cache ─────────────────────────────────────────────────────────────

func TestExportCache_NilIsNoop(t *testing.T) {
	var c *ExportCache
	assert.Nil(t, NewExportCache(nil, time.Hour))

	c.Put(context.Background(), "k", []byte("v"))
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestExportCache_UnreachableRedisMisses(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewExportCache(rdb, time.Hour)

	c.Put(context.Background(), "2026-03-10:detailed:pdf", []byte("%PDF"))
	_, ok := c.Get(context.Background(), "2026-03-10:detailed:pdf")
	assert.False(t, ok)
}

// ── Metrics ──────────────────────────────────────────────────────────────────

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordDayTransition("close", "ok")
	m.RecordDayTransition("close", "ok")
	m.RecordGuardRejection()
	m.RecordExportCache(true)
	m.RecordExportCache(false)
	m.RecordExportCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dayTransitions.WithLabelValues("close", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.guardRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exportCache.WithLabelValues("miss")))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTP("/x", "GET", "200", time.Millisecond)
		m.RecordDayTransition("start", "ok")
		m.RecordGuardRejection()
		m.RecordExportCache(true)
	})
}

// ── Database / mailer ────────────────────────────────────────────────────────

func TestNewDatabase_SQLiteMigrates(t *testing.T) {
	db, err := NewDatabase("sqlite:" + filepath.Join(t.TempDir(), "infra.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	assert.Equal(t, "sqlite", db.Dialector.Name())
	for _, table := range []string{"users", "tax_types", "orders", "order_items", "payments", "daily_closings"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// re-running is a no-op
	assert.NoError(t, RunMigrations(db))
}

func TestDialectorFor(t *testing.T) {
	assert.Equal(t, "sqlite", dialectorFor("sqlite:/tmp/x.db").Name())
	assert.Equal(t, "postgres", dialectorFor("postgres://u:p@localhost/db").Name())
}

func TestNewMailer(t *testing.T) {
	assert.Nil(t, NewMailer(&config.Config{}))

	m := NewMailer(&config.Config{SMTPHost: "smtp.example", SMTPPort: 2525, SMTPUser: "bot@example.com"})
	require.NotNil(t, m)
	assert.Equal(t, "smtp.example:2525", m.addr)
	assert.Equal(t, "bot@example.com", m.from)
	assert.True(t, strings.HasPrefix(m.addr, m.host))
}
