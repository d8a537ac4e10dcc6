package report

import "dailypos/internal/dto"

// ToSimple projects a detailed payload onto the simple view. Lifecycle
// metadata is copied verbatim so the projection applies equally to live and
// snapshot payloads; an empty source is reported as live.
func ToSimple(d dto.DetailedReport) dto.SimpleReport {
	source := d.Source
	if source == "" {
		source = dto.SourceLive
	}
	orderTypes := d.ByOrderType
	if len(orderTypes) == 0 {
		orderTypes = []dto.OrderTypeRow{{
			Type:       UndefinedOrderType,
			OrderCount: d.Totals.TicketCount,
			TotalTTC:   d.Totals.TotalTTC,
		}}
	}
	return dto.SimpleReport{
		ReportMode:    dto.ModeSimple,
		StartDate:     d.StartDate,
		OpeningTime:   d.OpeningTime,
		ClosingTime:   d.ClosingTime,
		ReportDate:    d.ReportDate,
		IsClosed:      d.IsClosed,
		IsStarted:     d.IsStarted,
		ClosingStatus: d.ClosingStatus,
		Source:        source,
		ClosedAt:      d.ClosedAt,
		ClosedBy:      d.ClosedBy,
		Summary: dto.Summary{
			OrderCount: d.Totals.TicketCount,
			TotalTTC:   d.Totals.TotalTTC,
			TotalHT:    d.Totals.TotalHT,
			TotalVAT:   d.Totals.TotalVAT,
		},
		OrderTypeTotals: orderTypes,
		Tickets:         []dto.TicketLine{},
		Totals:          d.Totals,
		ByTaxRate:       []dto.TaxRateRow{},
		ByTaxType:       []dto.TaxTypeRow{},
		PaymentMethods:  []dto.PaymentMethodRow{},
	}
}
