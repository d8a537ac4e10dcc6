package service

import (
	"context"

	"dailypos/internal/clock"
	"dailypos/internal/infra"
	"dailypos/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DayGuard gates every order and payment write on the closing state of the
// business day. It always reads the registry; nothing is cached.
type DayGuard interface {
	// EnsureDayOpen fails with ErrDayClosed when the closing row of date has
	// a closing time. Empty date means today. Pass the write transaction as
	// tx: on Postgres the row is share-locked until commit, so a concurrent
	// close waits for the write instead of missing it.
	EnsureDayOpen(ctx context.Context, tx *gorm.DB, date string) error
}

type dayGuard struct {
	closings repository.ClosingRepository
	clk      clock.Clock
	metrics  *infra.Metrics
}

func NewDayGuard(closings repository.ClosingRepository, clk clock.Clock, metrics *infra.Metrics) DayGuard {
	return &dayGuard{closings: closings, clk: clk, metrics: metrics}
}

func (g *dayGuard) EnsureDayOpen(ctx context.Context, tx *gorm.DB, date string) error {
	if date == "" {
		date = clock.Today(g.clk)
	}
	row, err := g.closings.LockByDate(ctx, tx, date, "SHARE")
	if err != nil {
		return err
	}
	if row != nil && row.ClosingTime != nil {
		log.Warn().Str("report_date", date).Msg("day guard: write rejected, day is closed")
		g.metrics.RecordGuardRejection()
		return ErrDayClosed
	}
	return nil
}
