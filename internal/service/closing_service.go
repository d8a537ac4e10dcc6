package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dailypos/internal/clock"
	"dailypos/internal/dto"
	"dailypos/internal/infra"
	"dailypos/internal/model"
	"dailypos/internal/report"
	"dailypos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID       uuid.UUID
	Username string
	Role     string
}

func (a Actor) idPtr() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// Report is a resolved day report. Payload returns the value to serialize for
// the requested mode.
type Report struct {
	Detailed dto.DetailedReport
	Mode     string
}

func (r Report) Payload() any {
	if r.Mode == dto.ModeSimple {
		return report.ToSimple(r.Detailed)
	}
	return r.Detailed
}

// Export is a rendered report document ready to be sent to the client.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportMailer delivers a rendered report as an attachment.
type ReportMailer interface {
	SendReport(to, subject, body, filename, contentType string, attachment []byte) error
}

// ExportCache stores rendered exports of closed days.
type ExportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, body []byte)
}

type ClosingService interface {
	StartDay(ctx context.Context, actor Actor, date string) (*Report, error)
	CloseDay(ctx context.Context, actor Actor, date string) (*Report, error)
	GetReport(ctx context.Context, date, mode string) (*Report, error)
	Export(ctx context.Context, date, mode, format string) (*Export, error)
	EmailReport(ctx context.Context, req dto.EmailReportRequest) error
	History(ctx context.Context, page, limit int) (*dto.HistoryResponse, error)
}

// ClosingDeps bundles the optional collaborators of ClosingService. Nil
// renderers, cache, mailer or metrics disable the matching feature.
type ClosingDeps struct {
	Renderers map[string]infra.ReportRenderer
	Cache     ExportCache
	Mailer    ReportMailer
	Metrics   *infra.Metrics
	Business  string
}

type closingService struct {
	closings repository.ClosingRepository
	ledger   repository.LedgerRepository
	clk      clock.Clock
	deps     ClosingDeps
}

func NewClosingService(
	closings repository.ClosingRepository,
	ledger repository.LedgerRepository,
	clk clock.Clock,
	deps ClosingDeps,
) ClosingService {
	return &closingService{closings: closings, ledger: ledger, clk: clk, deps: deps}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Day report variants ──────────────────────────────────────────────────────
// A day report is either computed now from the ledger or replayed from the
// payload frozen at close. The frozen variant never touches the ledger.

type dayReport interface {
	detailed() (dto.DetailedReport, error)
}

type liveReport struct {
	payload dto.DetailedReport
}

func (r liveReport) detailed() (dto.DetailedReport, error) { return r.payload, nil }

type frozenReport struct {
	row *model.DailyClosing
	loc *time.Location
}

// detailed decodes the stored payload and re-applies the snapshot
// annotations. Decoding into the typed payload and re-encoding keeps the
// bytes identical across reads. A row closed without a payload yields only
// its lifecycle fields.
func (r frozenReport) detailed() (dto.DetailedReport, error) {
	var d dto.DetailedReport
	if len(r.row.Payload) > 0 {
		if err := json.Unmarshal(r.row.Payload, &d); err != nil {
			return dto.DetailedReport{}, fmt.Errorf("closing %s: decode frozen payload: %w", r.row.ReportDate, err)
		}
	}
	if d.StartDate == "" {
		d.StartDate = r.row.StartDate
	}
	if d.ReportDate == "" {
		d.ReportDate = r.row.ReportDate
	}
	if d.OpeningTime == nil {
		d.OpeningTime = formatPtr(r.row.OpeningTime, r.loc)
	}
	if d.ClosingTime == nil {
		d.ClosingTime = formatPtr(r.row.ClosingTime, r.loc)
	}
	if r.row.ClosedAt != nil {
		d.ClosedAt = formatPtr(r.row.ClosedAt, r.loc)
	}
	if d.ClosedBy == nil && r.row.ClosedBy != nil {
		username := r.row.ClosedBy.Username
		d.ClosedBy = &username
	}
	d.ReportMode = dto.ModeDetailed
	d.IsClosed = true
	d.IsStarted = true
	d.ClosingStatus = model.DayClosed
	d.Source = dto.SourceSnapshot
	return d, nil
}

func formatPtr(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(report.TimestampLayout)
	return &s
}

// resolve picks the variant for a date. row may be nil.
func (s *closingService) resolve(ctx context.Context, tx *gorm.DB, date string, row *model.DailyClosing) (dayReport, error) {
	if row.State() == model.DayClosed && len(row.Payload) > 0 {
		return frozenReport{row: row, loc: s.clk.Location()}, nil
	}
	// A row with an opening time counts as started even when it carries no
	// payload; its window starts at that opening time.
	var (
		startDate = date
		opening   *time.Time
		started   = row != nil && row.OpeningTime != nil
	)
	if started {
		startDate = row.StartDate
		opening = row.OpeningTime
	}
	w, err := report.ResolveWindow(s.clk, date, startDate, opening, nil)
	if err != nil {
		return nil, err
	}
	d, err := s.build(ctx, tx, w)
	if err != nil {
		return nil, err
	}
	d.IsClosed = false
	d.IsStarted = started
	d.ClosingTime = nil
	d.ClosingStatus = model.DayNotStarted
	if d.IsStarted {
		d.ClosingStatus = model.DayOngoing
	}
	d.Source = dto.SourceLive
	return liveReport{payload: d}, nil
}

func (s *closingService) build(ctx context.Context, tx *gorm.DB, w report.Window) (dto.DetailedReport, error) {
	payments, err := s.ledger.PaymentsBetween(ctx, tx, w.Opening, w.Closing)
	if err != nil {
		return dto.DetailedReport{}, err
	}
	taxTypes, err := s.ledger.TaxTypes(ctx, tx)
	if err != nil {
		return dto.DetailedReport{}, err
	}
	return report.Build(w, report.Ledger{Payments: payments, TaxTypes: taxTypes}), nil
}

func (s *closingService) report(ctx context.Context, date, mode string) (*Report, error) {
	row, err := s.closings.FindByDate(ctx, nil, date)
	if err != nil {
		return nil, err
	}
	v, err := s.resolve(ctx, nil, date, row)
	if err != nil {
		return nil, err
	}
	d, err := v.detailed()
	if err != nil {
		return nil, err
	}
	return &Report{Detailed: d, Mode: mode}, nil
}

// todayOnly parses date and requires it to be today.
func (s *closingService) todayOnly(raw string) (string, error) {
	date, err := ParseReportDate(s.clk, raw)
	if err != nil {
		return "", err
	}
	if date != clock.Today(s.clk) {
		return "", ErrNotToday
	}
	return date, nil
}

// ── StartDay ─────────────────────────────────────────────────────────────────
// A day is started once. The unique report_date index settles concurrent
// starts: the losing insert fails and re-reads the row that won.

func (s *closingService) StartDay(ctx context.Context, actor Actor, raw string) (*Report, error) {
	date, err := s.todayOnly(raw)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	opening := now.UTC()
	row := &model.DailyClosing{ReportDate: date, StartDate: date, OpeningTime: &opening}

	txErr := runTx(ctx, s.closings.DB(), func(tx *gorm.DB) error {
		existing, err := s.closings.FindByDate(ctx, tx, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return stateConflict(existing)
		}
		return s.closings.Create(ctx, tx, row)
	})
	if txErr != nil && !isLifecycleErr(txErr) {
		// lost the insert race: report the state that won
		if existing, err := s.closings.FindByDate(ctx, nil, date); err == nil && existing != nil {
			txErr = stateConflict(existing)
		}
	}
	if txErr != nil {
		s.deps.Metrics.RecordDayTransition("start", outcome(txErr))
		return nil, s.withReport(ctx, date, txErr)
	}

	log.Info().
		Str("report_date", date).
		Time("opening_time", now).
		Str("started_by", actor.Username).
		Msg("day started")
	s.deps.Metrics.RecordDayTransition("start", "ok")

	w, err := report.ResolveWindow(s.clk, date, row.StartDate, row.OpeningTime, nil)
	if err != nil {
		return nil, err
	}
	d, err := s.build(ctx, nil, w)
	if err != nil {
		return nil, err
	}
	d.IsStarted = true
	d.IsClosed = false
	d.ClosingTime = nil
	d.ClosingStatus = model.DayOngoing
	d.Source = dto.SourceLive
	return &Report{Detailed: d, Mode: dto.ModeDetailed}, nil
}

// ── CloseDay ─────────────────────────────────────────────────────────────────
// The row is locked for the whole close; the payload is computed from the
// ledger as seen inside that transaction and written with a conditional
// update, so two concurrent closes cannot both succeed.

func (s *closingService) CloseDay(ctx context.Context, actor Actor, raw string) (*Report, error) {
	date, err := s.todayOnly(raw)
	if err != nil {
		return nil, err
	}

	var closed *model.DailyClosing
	txErr := runTx(ctx, s.closings.DB(), func(tx *gorm.DB) error {
		row, err := s.closings.LockByDate(ctx, tx, date, "UPDATE")
		if err != nil {
			return err
		}
		switch row.State() {
		case model.DayNotStarted:
			return ErrNotStarted
		case model.DayClosed:
			return ErrAlreadyClosed
		}

		now := s.clk.Now()
		w, err := report.ResolveWindow(s.clk, date, row.StartDate, row.OpeningTime, &now)
		if err != nil {
			return err
		}
		payload, err := s.build(ctx, tx, w)
		if err != nil {
			return err
		}
		payload.IsClosed = true
		payload.IsStarted = true
		payload.ClosingStatus = model.DayClosed
		payload.Source = dto.SourceSnapshot
		closedAt := w.Format(now)
		payload.ClosedAt = &closedAt
		if actor.Username != "" {
			username := actor.Username
			payload.ClosedBy = &username
		}

		blob, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("closing %s: encode payload: %w", date, err)
		}
		stamp := now.UTC()
		row.ClosingTime = &stamp
		row.ClosedAt = &stamp
		row.ClosedByID = actor.idPtr()
		row.Payload = datatypes.JSON(blob)

		ok, err := s.closings.MarkClosed(ctx, tx, row)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyClosed
		}
		closed = row
		return nil
	})
	if txErr != nil {
		s.deps.Metrics.RecordDayTransition("close", outcome(txErr))
		if errors.Is(txErr, ErrAlreadyClosed) {
			return nil, s.withReport(ctx, date, txErr)
		}
		return nil, txErr
	}

	log.Info().
		Str("report_date", date).
		Time("opening_time", *closed.OpeningTime).
		Time("closing_time", *closed.ClosingTime).
		Str("closed_by", actor.Username).
		Msg("day closed")
	s.deps.Metrics.RecordDayTransition("close", "ok")

	d, err := frozenReport{row: closed, loc: s.clk.Location()}.detailed()
	if err != nil {
		return nil, err
	}
	return &Report{Detailed: d, Mode: dto.ModeDetailed}, nil
}

func stateConflict(row *model.DailyClosing) error {
	if row.State() == model.DayClosed {
		return ErrAlreadyClosed
	}
	return ErrAlreadyStarted
}

func isLifecycleErr(err error) bool {
	return errors.Is(err, ErrAlreadyStarted) || errors.Is(err, ErrAlreadyClosed) || errors.Is(err, ErrNotStarted)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, ErrAlreadyClosed):
		return "already_closed"
	case errors.Is(err, ErrNotStarted):
		return "not_started"
	default:
		return "error"
	}
}

// withReport attaches the day's current report to a lifecycle refusal.
// Other errors pass through unchanged.
func (s *closingService) withReport(ctx context.Context, date string, err error) error {
	if !errors.Is(err, ErrAlreadyStarted) && !errors.Is(err, ErrAlreadyClosed) {
		return err
	}
	rep, rerr := s.report(ctx, date, dto.ModeDetailed)
	if rerr != nil {
		log.Error().Err(rerr).Str("report_date", date).Msg("conflict report unavailable")
		return err
	}
	return &ConflictError{Err: err, Report: rep.Payload()}
}

// ── GetReport ────────────────────────────────────────────────────────────────

func (s *closingService) GetReport(ctx context.Context, rawDate, rawMode string) (*Report, error) {
	date, err := ParseReportDate(s.clk, rawDate)
	if err != nil {
		return nil, err
	}
	mode, err := ParseReportMode(rawMode)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, date, mode)
}

// ── Export / Email ───────────────────────────────────────────────────────────
// Both only render closed days, so a rendered document never goes stale and
// is cached without invalidation.

func (s *closingService) Export(ctx context.Context, rawDate, rawMode, rawFormat string) (*Export, error) {
	date, err := ParseReportDate(s.clk, rawDate)
	if err != nil {
		return nil, err
	}
	mode, err := ParseReportMode(rawMode)
	if err != nil {
		return nil, err
	}
	format, err := ParseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, date, mode, format)
}

func (s *closingService) render(ctx context.Context, date, mode, format string) (*Export, error) {
	row, err := s.closings.FindByDate(ctx, nil, date)
	if err != nil {
		return nil, err
	}
	if row.State() != model.DayClosed {
		return nil, ErrExportNotAllowed
	}
	renderer, ok := s.deps.Renderers[format]
	if !ok || renderer == nil {
		return nil, fmt.Errorf("%w: no %s renderer configured", ErrRenderingUnavailable, format)
	}

	out := &Export{
		Filename:    fmt.Sprintf("daily-pos-report-%s.%s", date, renderer.Ext()),
		ContentType: renderer.ContentType(),
	}
	key := fmt.Sprintf("%s:%s:%s", date, mode, format)
	if s.deps.Cache != nil {
		if body, hit := s.deps.Cache.Get(ctx, key); hit {
			s.deps.Metrics.RecordExportCache(true)
			out.Body = body
			return out, nil
		}
		s.deps.Metrics.RecordExportCache(false)
	}

	v, err := s.resolve(ctx, nil, date, row)
	if err != nil {
		return nil, err
	}
	d, err := v.detailed()
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(d, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	if s.deps.Cache != nil {
		s.deps.Cache.Put(ctx, key, body)
	}
	out.Body = body
	return out, nil
}

func (s *closingService) EmailReport(ctx context.Context, req dto.EmailReportRequest) error {
	date, err := ParseReportDate(s.clk, req.Date)
	if err != nil {
		return err
	}
	mode, err := ParseReportMode(req.Mode)
	if err != nil {
		return err
	}
	if s.deps.Mailer == nil {
		return ErrMailerUnavailable
	}
	doc, err := s.render(ctx, date, mode, "pdf")
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s: Z report %s", s.deps.Business, date)
	body := fmt.Sprintf("Attached is the daily Z report for %s.", date)
	if err := s.deps.Mailer.SendReport(req.To, subject, body, doc.Filename, doc.ContentType, doc.Body); err != nil {
		log.Error().Err(err).Str("report_date", date).Str("to", req.To).Msg("report email failed")
		return fmt.Errorf("%w: %v", ErrMailerUnavailable, err)
	}
	log.Info().Str("report_date", date).Str("to", req.To).Msg("report emailed")
	return nil
}

// ── History ──────────────────────────────────────────────────────────────────

func (s *closingService) History(ctx context.Context, page, limit int) (*dto.HistoryResponse, error) {
	page, limit = pageBounds(page, limit)
	rows, total, err := s.closings.ListClosed(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ClosedDayResponse, 0, len(rows))
	for i := range rows {
		d, err := frozenReport{row: &rows[i], loc: s.clk.Location()}.detailed()
		if err != nil {
			return nil, err
		}
		items = append(items, dto.ClosedDayResponse{
			ReportDate:  d.ReportDate,
			StartDate:   d.StartDate,
			OpeningTime: d.OpeningTime,
			ClosingTime: d.ClosingTime,
			ClosedBy:    d.ClosedBy,
			TicketCount: d.Totals.TicketCount,
			TotalTTC:    d.Totals.TotalTTC,
		})
	}

	return &dto.HistoryResponse{
		Data:       items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
