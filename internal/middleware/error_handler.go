package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dailypos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler answers errors attached with c.Error that no handler mapped.
// The client gets a generic 500 carrying the request id; the cause is only
// logged. A request cancelled by its caller is logged at debug and gets no
// body, since nobody is left to read it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		requestID := c.GetString(RequestIDKey)
		level := zerolog.ErrorLevel
		if errors.Is(err, context.Canceled) {
			level = zerolog.DebugLevel
		}
		log.WithLevel(level).
			Str("request_id", requestID).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Int("errors", len(c.Errors)).
			Err(err).
			Msg("unhandled error")

		if c.Writer.Written() || errors.Is(err, context.Canceled) {
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.NewInternal(requestID))
	}
}

// Recovery turns a panic into the same 500 body as ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID := c.GetString(RequestIDKey)
				log.Error().
					Str("request_id", requestID).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.NewInternal(requestID))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. Server errors log at error level and
// client errors at warn, so a closed-day 409 storm stands out.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
