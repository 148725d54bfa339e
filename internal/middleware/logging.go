package middleware

import (
	"time"

	"casedesk/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger logs every request once it has been handled
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// let echo write the error response so the logged status is final
			c.Error(err)
		}

		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Float64("duration_s", time.Since(start).Seconds()),
			zap.String("ip", c.RealIP()),
		}
		log := logger.FromContext(c)
		if err != nil {
			log.Error("HTTP request failed", append(fields, zap.Error(err))...)
			return nil
		}
		log.Info("HTTP Request", fields...)
		return nil
	}
}
