package dto

import "dailypos/internal/money"

// Report modes and payload sources.
const (
	ModeDetailed = "detailed"
	ModeSimple   = "simple"

	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DayRequest struct {
	Date string `json:"date"`
}

type EmailReportRequest struct {
	Date string `json:"date"`
	To   string `json:"to"   validate:"required,email"`
	Mode string `json:"mode" validate:"omitempty,oneof=simple detailed"`
}

// ─── Detailed report ─────────────────────────────────────────────────────────

// DetailedReport is the Z-report payload. A closed day persists exactly this
// structure; reads of that day decode and re-annotate it, never rebuild it.
type DetailedReport struct {
	ReportMode    string  `json:"report_mode"`
	StartDate     string  `json:"start_date"`
	OpeningTime   *string `json:"opening_time"`
	ClosingTime   *string `json:"closing_time"`
	ReportDate    string  `json:"report_date"`
	IsClosed      bool    `json:"is_closed"`
	IsStarted     bool    `json:"is_started"`
	ClosingStatus string  `json:"closing_status"`
	Source        string  `json:"source"`
	ClosedAt      *string `json:"closed_at,omitempty"`
	ClosedBy      *string `json:"closed_by,omitempty"`

	Tickets        []TicketLine       `json:"tickets"`
	ByOrderType    []OrderTypeRow     `json:"by_order_type"`
	ByTaxRate      []TaxRateRow       `json:"by_tax_rate"`
	ByTaxType      []TaxTypeRow       `json:"by_tax_type"`
	PaymentMethods []PaymentMethodRow `json:"payment_methods"`
	Totals         Totals             `json:"totals"`
}

type TicketLine struct {
	OrderID           string       `json:"order_id"`
	CreatedAt         string       `json:"created_at"`
	CreatedByUsername *string      `json:"created_by_username"`
	CreatedByRole     *string      `json:"created_by_role"`
	OrderType         string       `json:"order_type"`
	TaxRate           money.Amount `json:"tax_rate"`
	HT                money.Amount `json:"ht"`
	VAT               money.Amount `json:"vat"`
	TTC               money.Amount `json:"ttc"`
}

type OrderTypeRow struct {
	Type       string       `json:"type"`
	OrderCount int          `json:"order_count"`
	TotalTTC   money.Amount `json:"total_ttc"`
}

type TaxRateRow struct {
	TaxRate     money.Amount `json:"tax_rate"`
	TicketCount int          `json:"ticket_count"`
	TotalHT     money.Amount `json:"total_ht"`
	TotalVAT    money.Amount `json:"total_vat"`
	TotalTTC    money.Amount `json:"total_ttc"`
}

type TaxTypeRow struct {
	TaxTypeID   string       `json:"tax_type_id"`
	TaxType     string       `json:"tax_type"`
	TaxRate     money.Amount `json:"tax_rate"`
	TicketCount int          `json:"ticket_count"`
	TotalHT     money.Amount `json:"total_ht"`
	TotalVAT    money.Amount `json:"total_vat"`
	TotalTTC    money.Amount `json:"total_ttc"`
}

// PaymentMethodRow counts payments, not orders: a ticket split between cash
// and card contributes one to each method.
type PaymentMethodRow struct {
	Method      string       `json:"method"`
	TicketCount int          `json:"ticket_count"`
	TotalAmount money.Amount `json:"total_amount"`
}

type Totals struct {
	TicketCount   int          `json:"ticket_count"`
	TotalRevenue  money.Amount `json:"total_revenue"`
	TotalVAT      money.Amount `json:"total_vat"`
	TotalHT       money.Amount `json:"total_ht"`
	TotalTTC      money.Amount `json:"total_ttc"`
	AverageTicket money.Amount `json:"average_ticket"`
}

// ─── Simple report ───────────────────────────────────────────────────────────

// SimpleReport is the lossy projection of a DetailedReport: totals and
// per-order-type figures only, the other tables are emptied.
type SimpleReport struct {
	ReportMode    string  `json:"report_mode"`
	StartDate     string  `json:"start_date"`
	OpeningTime   *string `json:"opening_time"`
	ClosingTime   *string `json:"closing_time"`
	ReportDate    string  `json:"report_date"`
	IsClosed      bool    `json:"is_closed"`
	IsStarted     bool    `json:"is_started"`
	ClosingStatus string  `json:"closing_status"`
	Source        string  `json:"source"`
	ClosedAt      *string `json:"closed_at,omitempty"`
	ClosedBy      *string `json:"closed_by,omitempty"`

	Summary         Summary            `json:"summary"`
	OrderTypeTotals []OrderTypeRow     `json:"order_type_totals"`
	Tickets         []TicketLine       `json:"tickets"`
	Totals          Totals             `json:"totals"`
	ByTaxRate       []TaxRateRow       `json:"by_tax_rate"`
	ByTaxType       []TaxTypeRow       `json:"by_tax_type"`
	PaymentMethods  []PaymentMethodRow `json:"payment_methods"`
}

type Summary struct {
	OrderCount int          `json:"order_count"`
	TotalTTC   money.Amount `json:"total_ttc"`
	TotalHT    money.Amount `json:"total_ht"`
	TotalVAT   money.Amount `json:"total_vat"`
}

// ─── History ─────────────────────────────────────────────────────────────────

type HistoryFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

type ClosedDayResponse struct {
	ReportDate  string       `json:"report_date"`
	StartDate   string       `json:"start_date"`
	OpeningTime *string      `json:"opening_time"`
	ClosingTime *string      `json:"closing_time"`
	ClosedBy    *string      `json:"closed_by"`
	TicketCount int          `json:"ticket_count"`
	TotalTTC    money.Amount `json:"total_ttc"`
}

type HistoryResponse struct {
	Data       []ClosedDayResponse `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}
