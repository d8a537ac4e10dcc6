package infra

// pdf.go: Z-report PDF rendering using go-pdf/fpdf. A4 portrait with:
//   - Business name and report title
//   - Date, opening and closing time
//   - Totals block
//   - Detailed mode: tax breakdown by tax type, then payment methods
//   - Simple mode: totals by order type

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"dailypos/internal/dto"
	"dailypos/internal/money"
	"dailypos/internal/report"

	"github.com/go-pdf/fpdf"
)

// ReportRenderer turns a report payload into an exportable document.
// Simple mode is projected from the detailed payload by the renderer.
type ReportRenderer interface {
	Render(r dto.DetailedReport, mode string) ([]byte, error)
	ContentType() string
	Ext() string
}

type PDFRenderer struct {
	business string
	currency string
}

func NewPDFRenderer(business, currency string) *PDFRenderer {
	return &PDFRenderer{business: business, currency: currency}
}

func (*PDFRenderer) ContentType() string { return "application/pdf" }
func (*PDFRenderer) Ext() string         { return "pdf" }

func (p *PDFRenderer) Render(r dto.DetailedReport, mode string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, p.business, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Daily Z Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	line := func(text string) { pdf.CellFormat(contentW, 5, text, "", 1, "L", false, 0, "") }
	line("Date: " + r.ReportDate)
	line("Opening Time: " + orDash(r.OpeningTime))
	line("Closing Time: " + orDash(r.ClosingTime))
	if r.ClosedBy != nil {
		line("Closed By: " + *r.ClosedBy)
	}

	if mode == dto.ModeSimple {
		s := report.ToSimple(r)
		line("Orders: " + strconv.Itoa(s.Summary.OrderCount))
		line("Total TTC: " + p.amount(s.Summary.TotalTTC))
		line("Total HT: " + p.amount(s.Summary.TotalHT))
		line("Total VAT: " + p.amount(s.Summary.TotalVAT))
		pdf.Ln(5)

		rows := make([][]string, 0, len(s.OrderTypeTotals))
		for _, row := range s.OrderTypeTotals {
			rows = append(rows, []string{row.Type, strconv.Itoa(row.OrderCount), p.amount(row.TotalTTC)})
		}
		p.table(pdf, "Totals By Order Type", contentW,
			[]string{"Order Type", "Orders", "Total TTC"}, []float64{0.5, 0.2, 0.3}, rows)
		return output(pdf)
	}

	line("Tickets: " + strconv.Itoa(r.Totals.TicketCount))
	line("Total TTC: " + p.amount(r.Totals.TotalTTC))
	line("Total HT: " + p.amount(r.Totals.TotalHT))
	line("Total VAT: " + p.amount(r.Totals.TotalVAT))
	line("Average Ticket: " + p.amount(r.Totals.AverageTicket))
	pdf.Ln(5)

	taxRows := make([][]string, 0, len(r.ByTaxType))
	for _, row := range r.ByTaxType {
		taxRows = append(taxRows, []string{
			row.TaxType,
			row.TaxRate.String() + "%",
			strconv.Itoa(row.TicketCount),
			p.amount(row.TotalHT),
			p.amount(row.TotalVAT),
			p.amount(row.TotalTTC),
		})
	}
	p.table(pdf, "Tax Breakdown", contentW,
		[]string{"Tax Type", "Tax Rate", "Tickets", "Total HT", "Total VAT", "Total TTC"},
		[]float64{0.22, 0.12, 0.1, 0.18, 0.18, 0.2}, taxRows)
	pdf.Ln(4)

	payRows := make([][]string, 0, len(r.PaymentMethods))
	for _, row := range r.PaymentMethods {
		payRows = append(payRows, []string{
			strings.ToUpper(row.Method),
			strconv.Itoa(row.TicketCount),
			p.amount(row.TotalAmount),
		})
	}
	p.table(pdf, "Payment Methods", contentW,
		[]string{"Payment Method", "Tickets", "Total"}, []float64{0.5, 0.2, 0.3}, payRows)

	return output(pdf)
}

// table draws a grid with a grey bold header row; every column after the
// first is right-aligned.
func (p *PDFRenderer) table(pdf *fpdf.Fpdf, title string, width float64, header []string, cols []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(width, 7, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(0xe7, 0xe7, 0xe7)
	for i, h := range header {
		pdf.CellFormat(width*cols[i], 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(width*cols[i], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (p *PDFRenderer) amount(a money.Amount) string {
	return a.String() + " " + p.currency
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
