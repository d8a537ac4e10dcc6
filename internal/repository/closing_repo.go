package repository

import (
	"context"

	"dailypos/internal/model"

	"gorm.io/gorm"
)

// ClosingRepository persists the per-date rows of the closing registry.
// Lookups return (nil, nil) when the date has no row.
type ClosingRepository interface {
	FindByDate(ctx context.Context, tx *gorm.DB, reportDate string) (*model.DailyClosing, error)
	// LockByDate reads the row under a row lock. strength is "UPDATE" for
	// transitions and "SHARE" for guarded writes.
	LockByDate(ctx context.Context, tx *gorm.DB, reportDate, strength string) (*model.DailyClosing, error)
	Create(ctx context.Context, tx *gorm.DB, c *model.DailyClosing) error
	// MarkClosed stamps closing fields only if the row is still open and
	// reports whether it did.
	MarkClosed(ctx context.Context, tx *gorm.DB, c *model.DailyClosing) (bool, error)
	ListClosed(ctx context.Context, page, limit int) ([]model.DailyClosing, int64, error)
	DB() *gorm.DB
}

type closingRepo struct{ db *gorm.DB }

func NewClosingRepository(db *gorm.DB) ClosingRepository { return &closingRepo{db: db} }

func (r *closingRepo) DB() *gorm.DB { return r.db }

func (r *closingRepo) FindByDate(ctx context.Context, tx *gorm.DB, reportDate string) (*model.DailyClosing, error) {
	var c model.DailyClosing
	err := conn(ctx, r.db, tx).Preload("ClosedBy").Where("report_date = ?", reportDate).First(&c).Error
	return notFoundAsNil(&c, err)
}

func (r *closingRepo) LockByDate(ctx context.Context, tx *gorm.DB, reportDate, strength string) (*model.DailyClosing, error) {
	var c model.DailyClosing
	err := lockRows(conn(ctx, r.db, tx), strength).Where("report_date = ?", reportDate).First(&c).Error
	return notFoundAsNil(&c, err)
}

func (r *closingRepo) Create(ctx context.Context, tx *gorm.DB, c *model.DailyClosing) error {
	return conn(ctx, r.db, tx).Omit("ClosedBy").Create(c).Error
}

func (r *closingRepo) MarkClosed(ctx context.Context, tx *gorm.DB, c *model.DailyClosing) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.DailyClosing{}).
		Where("id = ? AND closing_time IS NULL", c.ID).
		Updates(map[string]any{
			"closing_time": c.ClosingTime,
			"closed_by_id": c.ClosedByID,
			"payload":      c.Payload,
			"closed_at":    c.ClosedAt,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *closingRepo) ListClosed(ctx context.Context, page, limit int) ([]model.DailyClosing, int64, error) {
	var (
		rows  []model.DailyClosing
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.DailyClosing{}).Where("closing_time IS NOT NULL")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("ClosedBy").
		Order("report_date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
