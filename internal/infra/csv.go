package infra

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"dailypos/internal/dto"
	"dailypos/internal/report"
)

// CSVRenderer writes the report as sectioned CSV: a header block, then one
// block per table separated by a blank line.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer { return &CSVRenderer{} }

func (*CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }
func (*CSVRenderer) Ext() string         { return "csv" }

func (*CSVRenderer) Render(r dto.DetailedReport, mode string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	blocks := [][][]string{{
		{"report_date", r.ReportDate},
		{"report_mode", mode},
		{"opening_time", orDash(r.OpeningTime)},
		{"closing_time", orDash(r.ClosingTime)},
		{"closing_status", r.ClosingStatus},
	}}

	if mode == dto.ModeSimple {
		s := report.ToSimple(r)
		summary := [][]string{
			{"order_count", "total_ttc", "total_ht", "total_vat"},
			{strconv.Itoa(s.Summary.OrderCount), s.Summary.TotalTTC.String(), s.Summary.TotalHT.String(), s.Summary.TotalVAT.String()},
		}
		types := [][]string{{"order_type", "order_count", "total_ttc"}}
		for _, row := range s.OrderTypeTotals {
			types = append(types, []string{row.Type, strconv.Itoa(row.OrderCount), row.TotalTTC.String()})
		}
		blocks = append(blocks, summary, types)
	} else {
		totals := [][]string{
			{"ticket_count", "total_ht", "total_vat", "total_ttc", "average_ticket"},
			{
				strconv.Itoa(r.Totals.TicketCount),
				r.Totals.TotalHT.String(),
				r.Totals.TotalVAT.String(),
				r.Totals.TotalTTC.String(),
				r.Totals.AverageTicket.String(),
			},
		}
		tickets := [][]string{{"order_id", "created_at", "created_by", "order_type", "tax_rate", "ht", "vat", "ttc"}}
		for _, t := range r.Tickets {
			tickets = append(tickets, []string{
				t.OrderID, t.CreatedAt, orDash(t.CreatedByUsername), t.OrderType,
				t.TaxRate.String(), t.HT.String(), t.VAT.String(), t.TTC.String(),
			})
		}
		taxes := [][]string{{"tax_type", "tax_rate", "ticket_count", "total_ht", "total_vat", "total_ttc"}}
		for _, row := range r.ByTaxType {
			taxes = append(taxes, []string{
				row.TaxType, row.TaxRate.String(), strconv.Itoa(row.TicketCount),
				row.TotalHT.String(), row.TotalVAT.String(), row.TotalTTC.String(),
			})
		}
		methods := [][]string{{"payment_method", "ticket_count", "total_amount"}}
		for _, row := range r.PaymentMethods {
			methods = append(methods, []string{row.Method, strconv.Itoa(row.TicketCount), row.TotalAmount.String()})
		}
		blocks = append(blocks, totals, tickets, taxes, methods)
	}

	for i, block := range blocks {
		if i > 0 {
			if err := w.Write([]string{}); err != nil {
				return nil, fmt.Errorf("csv: write: %w", err)
			}
		}
		if err := w.WriteAll(block); err != nil {
			return nil, fmt.Errorf("csv: write: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush: %w", err)
	}
	return buf.Bytes(), nil
}
