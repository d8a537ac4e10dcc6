package report

import (
	"fmt"
	"time"

	"dailypos/internal/clock"
)

// TimestampLayout renders every instant in a payload (ISO-8601, millisecond
// precision, local offset).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Window is the closed interval [Opening, Closing] a report covers.
// ReportDate is the nominal day; StartDate is the day the window began, which
// may precede ReportDate for days closed after midnight.
type Window struct {
	ReportDate string
	StartDate  string
	Opening    time.Time
	Closing    time.Time
	Location   *time.Location
}

// Contains reports whether t lies within the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Opening) && !t.After(w.Closing)
}

// Format renders t in the window's time zone.
func (w Window) Format(t time.Time) string {
	return t.In(w.Location).Format(TimestampLayout)
}

// ResolveWindow fills the bounds a caller did not pin:
//   - opening defaults to local midnight of startDate (reportDate if empty);
//   - closing defaults to now when reportDate is today, otherwise to the last
//     instant of reportDate, so a past unclosed day covers its full calendar
//     span while today's live report keeps moving.
func ResolveWindow(clk clock.Clock, reportDate, startDate string, opening, closing *time.Time) (Window, error) {
	loc := clk.Location()
	if startDate == "" {
		startDate = reportDate
	}
	day, err := time.ParseInLocation(clock.DateLayout, reportDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("report: parse report date %q: %w", reportDate, err)
	}
	start, err := time.ParseInLocation(clock.DateLayout, startDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("report: parse start date %q: %w", startDate, err)
	}

	w := Window{ReportDate: reportDate, StartDate: startDate, Location: loc}
	if opening != nil {
		w.Opening = *opening
	} else {
		w.Opening = start
	}
	switch {
	case closing != nil:
		w.Closing = *closing
	case reportDate == clock.Today(clk):
		w.Closing = clk.Now()
	default:
		w.Closing = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return w, nil
}
