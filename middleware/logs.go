package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request. Health checks are
// skipped to keep the stream readable.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	skip := map[string]bool{
		"/health":  true,
		"/metrics": true,
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		fields := logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		}
		if err != nil {
			fields["error"] = err.Error()
			logger.WithFields(fields).Error("request failed")
			return err
		}
		logger.WithFields(fields).Info("request")
		return nil
	}
}
