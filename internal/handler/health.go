package handler

import (
	"context"
	"net/http"
	"time"

	"dailypos/internal/clock"
	"dailypos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthTimeout = 3 * time.Second

// Health checks the database and the export cache, and reports the state of
// today's business day so a register can tell whether it may take orders.
// A nil rdb means the export cache is disabled. The day state never affects
// the status code: a closed day is healthy.
func Health(db *gorm.DB, rdb *redis.Client, closings repository.ClosingRepository, clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		today := clock.Today(clk)
		dayStatus := "unknown"
		if dbStatus == "connected" {
			if row, err := closings.FindByDate(ctx, nil, today); err == nil {
				dayStatus = row.State()
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"business_day": gin.H{
				"date":     today,
				"status":   dayStatus,
				"timezone": clk.Location().String(),
			},
		})
	}
}
