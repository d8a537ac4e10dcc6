package service

import (
	"context"
	"fmt"
	"strings"

	"dailypos/internal/clock"
	"dailypos/internal/dto"
	"dailypos/internal/model"
	"dailypos/internal/money"
	"dailypos/internal/report"
	"dailypos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	AddItem(ctx context.Context, orderID uuid.UUID, req dto.OrderItemRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	RecordPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error)
	List(ctx context.Context, status string, page, limit int) (*dto.OrderPage, error)
	ListPayments(ctx context.Context, orderID string, page, limit int) (*dto.PaymentPage, error)
}

type orderService struct {
	orders  repository.OrderRepository
	catalog repository.CatalogRepository
	guard   DayGuard
	clk     clock.Clock
}

func NewOrderService(
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	guard DayGuard,
	clk clock.Clock,
) OrderService {
	return &orderService{orders: orders, catalog: catalog, guard: guard, clk: clk}
}

// ── Create ───────────────────────────────────────────────────────────────────
// One transaction:
//   1. Day guard for today
//   2. Create order with zero totals
//   3. Create items with their price snapshot
//   4. Recompute totals (tax-inclusive)
//   5. Optional full payment, order becomes paid

func (s *orderService) Create(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	method, err := normalizeMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	var taxTypeID *uuid.UUID
	if req.TaxTypeID != nil && *req.TaxTypeID != "" {
		id, err := uuid.Parse(*req.TaxTypeID)
		if err != nil {
			return nil, fmt.Errorf("%w: tax_type_id: %v", ErrInvalidOrder, err)
		}
		taxTypeID = &id
	}

	var orderID uuid.UUID
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.guard.EnsureDayOpen(ctx, tx, clock.Today(s.clk)); err != nil {
			return err
		}

		var taxType *model.TaxType
		if taxTypeID != nil {
			tt, err := s.catalog.FindTaxType(ctx, tx, *taxTypeID)
			if err != nil {
				return err
			}
			if tt == nil {
				return fmt.Errorf("%w: tax type %s", ErrNotFound, taxTypeID)
			}
			taxType = tt
		}

		now := s.clk.Now().UTC()
		order := &model.Order{
			CreatedAt:   now,
			CreatedByID: actor.idPtr(),
			Status:      model.OrderInProgress,
			TaxTypeID:   taxTypeID,
			OrderType:   req.OrderType,
		}
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return err
		}

		for _, itemReq := range req.Items {
			item, err := s.newItem(ctx, tx, order.ID, itemReq)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
		}

		recompute(order, taxType)
		if method != "" {
			payment := &model.Payment{
				OrderID:   order.ID,
				Method:    method,
				Amount:    order.Total,
				CreatedAt: now,
			}
			if err := s.orders.CreatePayment(ctx, tx, payment); err != nil {
				return err
			}
			order.Status = model.OrderPaid
		}
		if err := s.orders.UpdateTotals(ctx, tx, order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, orderID)
}

// ── AddItem ──────────────────────────────────────────────────────────────────

func (s *orderService) AddItem(ctx context.Context, orderID uuid.UUID, req dto.OrderItemRequest) (*dto.OrderResponse, error) {
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.guard.EnsureDayOpen(ctx, tx, clock.Today(s.clk)); err != nil {
			return err
		}
		order, err := s.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		if order.Status == model.OrderCancelled {
			return fmt.Errorf("%w: order is cancelled", ErrInvalidOrder)
		}

		item, err := s.newItem(ctx, tx, order.ID, req)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, *item)
		recompute(order, order.TaxType)
		return s.orders.UpdateTotals(ctx, tx, order)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, orderID)
}

// newItem prices an item from the current product price plus its option
// deltas. The price is stored on the item and never re-derived.
func (s *orderService) newItem(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, req dto.OrderItemRequest) (*model.OrderItem, error) {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: product_id: %v", ErrInvalidOrder, err)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidOrder)
	}
	p, err := s.catalog.FindProduct(ctx, tx, pid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, pid)
	}
	if !p.IsAvailable {
		return nil, fmt.Errorf("%w: product %s is not available", ErrInvalidOrder, p.Name)
	}

	price := p.Price
	choices := make([]model.OptionChoice, 0, len(req.Choices))
	for _, c := range req.Choices {
		price = price.Add(c.Price)
		choices = append(choices, model.OptionChoice{Name: c.Name, Price: c.Price})
	}
	item := &model.OrderItem{
		OrderID:   orderID,
		ProductID: pid,
		Quantity:  req.Quantity,
		Price:     money.Round2(price),
		Choices:   choices,
		Subtotal:  money.Round2(price.Mul(decimal.NewFromInt(int64(req.Quantity)))),
		CreatedAt: s.clk.Now().UTC(),
	}
	if err := s.orders.CreateItem(ctx, tx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// recompute derives totals from the items: total is their sum and the tax
// is extracted from it. Without a tax type the tax is zero, so stored
// amounts always agree with the rate reports group them under.
func recompute(o *model.Order, taxType *model.TaxType) {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	percent := decimal.Zero
	if taxType != nil {
		percent = taxType.Percent
	}
	o.Total = money.Round2(total)
	o.Subtotal, o.TaxAmount = money.SplitInclusive(o.Total, percent)
}

// ── RecordPayment ────────────────────────────────────────────────────────────

func (s *orderService) RecordPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order_id: %v", ErrInvalidOrder, err)
	}
	method, err := normalizeMethod(&req.Method)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}

	var payment *model.Payment
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.guard.EnsureDayOpen(ctx, tx, clock.Today(s.clk)); err != nil {
			return err
		}
		order, err := s.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		if order.Status == model.OrderCancelled {
			return fmt.Errorf("%w: order is cancelled", ErrInvalidOrder)
		}

		payment = &model.Payment{
			OrderID:   order.ID,
			Method:    method,
			Amount:    money.Round2(req.Amount),
			CreatedAt: s.clk.Now().UTC(),
		}
		if err := s.orders.CreatePayment(ctx, tx, payment); err != nil {
			return err
		}
		order.Status = model.OrderPaid
		return s.orders.UpdateTotals(ctx, tx, order)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.paymentResponse(payment), nil
}

// ── UpdateStatus ─────────────────────────────────────────────────────────────
// Orders move between in_progress and ready while being prepared and may be
// cancelled before payment. paid and cancelled are terminal. The change
// mutates an order, so it runs behind the day guard like every other write.

// statusSources lists, per target status, the statuses an order may leave
// to reach it.
var statusSources = map[string][]string{
	model.OrderInProgress: {model.OrderReady},
	model.OrderReady:      {model.OrderInProgress},
	model.OrderCancelled:  {model.OrderInProgress, model.OrderReady},
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	target := strings.ToLower(strings.TrimSpace(req.Status))
	from, ok := statusSources[target]
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, req.Status)
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.guard.EnsureDayOpen(ctx, tx, clock.Today(s.clk)); err != nil {
			return err
		}
		order, err := s.orders.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		if order.Status == target {
			return nil
		}
		if !contains(from, order.Status) {
			return fmt.Errorf("%w: %s to %s", ErrStatusTransition, order.Status, target)
		}
		// conditional on the status just read, so a concurrent payment wins
		moved, err := s.orders.UpdateStatus(ctx, tx, id, target, order.Status)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: order %s changed concurrently", ErrStatusTransition, id)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, id)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ── Lists ────────────────────────────────────────────────────────────────────

func (s *orderService) List(ctx context.Context, status string, page, limit int) (*dto.OrderPage, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != model.OrderPaid {
		if _, ok := statusSources[status]; !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, status)
		}
	}
	page, limit = pageBounds(page, limit)
	orders, total, err := s.orders.List(ctx, repository.OrderFilter{Status: status, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderPage{
		Data:       make([]dto.OrderResponse, 0, len(orders)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
	for i := range orders {
		out.Data = append(out.Data, *s.orderResponse(&orders[i]))
	}
	return out, nil
}

func (s *orderService) ListPayments(ctx context.Context, orderID string, page, limit int) (*dto.PaymentPage, error) {
	f := repository.PaymentFilter{}
	if orderID != "" {
		id, err := uuid.Parse(orderID)
		if err != nil {
			return nil, fmt.Errorf("%w: order_id: %v", ErrInvalidOrder, err)
		}
		f.OrderID = &id
	}
	f.Page, f.Limit = pageBounds(page, limit)
	payments, total, err := s.orders.ListPayments(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.PaymentPage{
		Data:       make([]dto.PaymentResponse, 0, len(payments)),
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	for i := range payments {
		out.Data = append(out.Data, *s.paymentResponse(&payments[i]))
	}
	return out, nil
}

// ── Get ──────────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return s.orderResponse(order), nil
}

func normalizeMethod(raw *string) (string, error) {
	if raw == nil {
		return "", nil
	}
	method := strings.ToLower(strings.TrimSpace(*raw))
	switch method {
	case "", model.PaymentCash, model.PaymentCard:
		return method, nil
	default:
		return "", fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, *raw)
	}
}

func (s *orderService) orderResponse(o *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:        o.ID.String(),
		CreatedAt: o.CreatedAt.In(s.clk.Location()).Format(report.TimestampLayout),
		Status:    o.Status,
		OrderType: o.OrderType,
		Subtotal:  o.Subtotal,
		TaxAmount: o.TaxAmount,
		Total:     o.Total,
		Items:     make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	if o.TaxTypeID != nil {
		id := o.TaxTypeID.String()
		resp.TaxTypeID = &id
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal,
		})
	}
	return resp
}

func (s *orderService) paymentResponse(p *model.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:        p.ID.String(),
		OrderID:   p.OrderID.String(),
		Method:    p.Method,
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt.In(s.clk.Location()).Format(report.TimestampLayout),
	}
}
