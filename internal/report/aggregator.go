// Package report turns ledger records into Z-report payloads. Everything here
// is pure: the same window and ledger always produce the same payload.
package report

import (
	"sort"

	"dailypos/internal/dto"
	"dailypos/internal/model"
	"dailypos/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UndefinedOrderType labels tickets whose order carries no classification.
const UndefinedOrderType = "undefined"

// Ledger is the read-only slice of order capture data a report needs.
// Payments must have Order preloaded (with TaxType and CreatedBy when set).
// TaxTypes lists every defined tax type; by_tax_type reports all of them.
type Ledger struct {
	Payments []model.Payment
	TaxTypes []model.TaxType
}

type taxGroup struct {
	count        int
	ht, vat, ttc decimal.Decimal
}

func (g *taxGroup) add(o *model.Order) {
	g.count++
	g.ht = g.ht.Add(o.Subtotal)
	g.vat = g.vat.Add(o.TaxAmount)
	g.ttc = g.ttc.Add(o.Total)
}

type orderTypeGroup struct {
	count int
	ttc   decimal.Decimal
}

type methodGroup struct {
	count  int
	amount decimal.Decimal
}

// Build aggregates a detailed report over w. A ticket is any order that
// received at least one payment inside w, whatever its own creation time.
// Sums are kept at full precision and rounded only when written to the
// payload. Lifecycle fields (is_closed, source, ...) are left for the caller.
func Build(w Window, l Ledger) dto.DetailedReport {
	var (
		orders  = make(map[uuid.UUID]*model.Order)
		methods = make(map[string]*methodGroup)
	)
	for i := range l.Payments {
		p := &l.Payments[i]
		if !w.Contains(p.CreatedAt) {
			continue
		}
		if p.Order != nil {
			orders[p.OrderID] = p.Order
		}
		g, ok := methods[p.Method]
		if !ok {
			g = &methodGroup{}
			methods[p.Method] = g
		}
		g.count++
		g.amount = g.amount.Add(p.Amount)
	}

	tickets := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		tickets = append(tickets, o)
	}
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
		}
		return tickets[i].ID.String() < tickets[j].ID.String()
	})

	byRate := make(map[string]*taxGroup)
	rates := make(map[string]decimal.Decimal)
	byType := make(map[uuid.UUID]*taxGroup, len(l.TaxTypes))
	for _, tt := range l.TaxTypes {
		byType[tt.ID] = &taxGroup{}
	}
	byOrderType := make(map[string]*orderTypeGroup)

	var totalHT, totalVAT, totalTTC decimal.Decimal
	lines := make([]dto.TicketLine, 0, len(tickets))

	for _, o := range tickets {
		rate := effectiveRate(o)
		key := rate.StringFixed(money.Places)
		g, ok := byRate[key]
		if !ok {
			g = &taxGroup{}
			byRate[key] = g
			rates[key] = rate
		}
		g.add(o)
		if o.TaxTypeID != nil {
			if tg, ok := byType[*o.TaxTypeID]; ok {
				tg.add(o)
			}
		}

		totalHT = totalHT.Add(o.Subtotal)
		totalVAT = totalVAT.Add(o.TaxAmount)
		totalTTC = totalTTC.Add(o.Total)

		orderType := UndefinedOrderType
		if o.OrderType != nil && *o.OrderType != "" {
			orderType = *o.OrderType
		}
		og, ok := byOrderType[orderType]
		if !ok {
			og = &orderTypeGroup{}
			byOrderType[orderType] = og
		}
		og.count++
		og.ttc = og.ttc.Add(o.Total)

		lines = append(lines, ticketLine(w, o, orderType, rate))
	}

	count := len(lines)
	opening := w.Format(w.Opening)
	closing := w.Format(w.Closing)
	return dto.DetailedReport{
		ReportMode:     dto.ModeDetailed,
		StartDate:      w.StartDate,
		OpeningTime:    &opening,
		ClosingTime:    &closing,
		ReportDate:     w.ReportDate,
		Tickets:        lines,
		ByOrderType:    orderTypeRows(byOrderType),
		ByTaxRate:      taxRateRows(byRate, rates),
		ByTaxType:      taxTypeRows(l.TaxTypes, byType),
		PaymentMethods: methodRows(methods),
		Totals: dto.Totals{
			TicketCount:   count,
			TotalRevenue:  money.NewAmount(totalTTC),
			TotalVAT:      money.NewAmount(totalVAT),
			TotalHT:       money.NewAmount(totalHT),
			TotalTTC:      money.NewAmount(totalTTC),
			AverageTicket: money.NewAmount(money.Average(totalTTC, count)),
		},
	}
}

// effectiveRate is the order's tax type percent, or zero without a tax type.
// Stored tax amounts are reported as-is; order capture keeps them consistent.
func effectiveRate(o *model.Order) decimal.Decimal {
	if o.TaxType == nil {
		return decimal.Zero
	}
	return o.TaxType.Percent
}

func ticketLine(w Window, o *model.Order, orderType string, rate decimal.Decimal) dto.TicketLine {
	line := dto.TicketLine{
		OrderID:   o.ID.String(),
		CreatedAt: w.Format(o.CreatedAt),
		OrderType: orderType,
		TaxRate:   money.NewAmount(rate),
		HT:        money.NewAmount(o.Subtotal),
		VAT:       money.NewAmount(o.TaxAmount),
		TTC:       money.NewAmount(o.Total),
	}
	if o.CreatedBy != nil {
		username, role := o.CreatedBy.Username, o.CreatedBy.Role
		line.CreatedByUsername = &username
		line.CreatedByRole = &role
	}
	return line
}

func orderTypeRows(groups map[string]*orderTypeGroup) []dto.OrderTypeRow {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]dto.OrderTypeRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, dto.OrderTypeRow{Type: k, OrderCount: g.count, TotalTTC: money.NewAmount(g.ttc)})
	}
	return rows
}

func taxRateRows(groups map[string]*taxGroup, rates map[string]decimal.Decimal) []dto.TaxRateRow {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return rates[keys[i]].LessThan(rates[keys[j]]) })
	rows := make([]dto.TaxRateRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, dto.TaxRateRow{
			TaxRate:     money.NewAmount(rates[k]),
			TicketCount: g.count,
			TotalHT:     money.NewAmount(g.ht),
			TotalVAT:    money.NewAmount(g.vat),
			TotalTTC:    money.NewAmount(g.ttc),
		})
	}
	return rows
}

func taxTypeRows(types []model.TaxType, groups map[uuid.UUID]*taxGroup) []dto.TaxTypeRow {
	sorted := make([]model.TaxType, len(types))
	copy(sorted, types)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	rows := make([]dto.TaxTypeRow, 0, len(sorted))
	for _, tt := range sorted {
		g := groups[tt.ID]
		rows = append(rows, dto.TaxTypeRow{
			TaxTypeID:   tt.ID.String(),
			TaxType:     tt.Label,
			TaxRate:     money.NewAmount(tt.Percent),
			TicketCount: g.count,
			TotalHT:     money.NewAmount(g.ht),
			TotalVAT:    money.NewAmount(g.vat),
			TotalTTC:    money.NewAmount(g.ttc),
		})
	}
	return rows
}

func methodRows(groups map[string]*methodGroup) []dto.PaymentMethodRow {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]dto.PaymentMethodRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, dto.PaymentMethodRow{Method: k, TicketCount: g.count, TotalAmount: money.NewAmount(g.amount)})
	}
	return rows
}
