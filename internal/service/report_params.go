package service

import (
	"strings"
	"time"

	"dailypos/internal/clock"
	"dailypos/internal/dto"
)

// ParseReportDate validates a YYYY-MM-DD date in the register's time zone.
// Empty means today; future dates are rejected.
func ParseReportDate(clk clock.Clock, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	today := clock.Today(clk)
	if raw == "" {
		return today, nil
	}
	d, err := time.ParseInLocation(clock.DateLayout, raw, clk.Location())
	if err != nil {
		return "", ErrMalformedDate
	}
	date := d.Format(clock.DateLayout)
	if date > today {
		return "", ErrFutureDate
	}
	return date, nil
}

// ParseReportMode normalizes a report mode; empty means detailed.
func ParseReportMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return dto.ModeDetailed, nil
	case dto.ModeDetailed, dto.ModeSimple:
		return mode, nil
	default:
		return "", ErrInvalidMode
	}
}

// ParseExportFormat normalizes an export format; empty means pdf.
func ParseExportFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "":
		return "pdf", nil
	case "pdf", "csv":
		return format, nil
	default:
		return "", ErrInvalidFormat
	}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pageBounds defaults page to 1 and limit to 20 when out of range.
func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}
