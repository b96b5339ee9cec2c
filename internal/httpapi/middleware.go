package httpapi

import (
	"strconv"
	"time"

	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDKey = "requestID"

// RequestLogger assigns a request id, logs one line per request and
// records its latency.
func RequestLogger(logger zerolog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(fiber.HeaderXRequestID, requestID)
		c.Locals(requestIDKey, requestID)

		err := c.Next()
		if err != nil {
			// let the error handler set the final status before we log it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency)
		if p := principalFrom(c); p.ID != "" {
			event.Str("principal", p.ID)
		}
		if err != nil {
			event.Err(err)
		}
		event.Msg("request")

		route := c.Route().Path
		m.RecordHTTPRequest(c.Method(), route, strconv.Itoa(status), latency)
		return nil
	}
}

// Recovery turns a handler panic into a 500 reply.
func Recovery(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals(requestIDKey).(string)
				logger.Error().
					Str("request_id", requestID).
					Interface("panic", r).
					Str("path", c.Path()).
					Msg("panic recovered")
				err = fail(c, fiber.StatusInternalServerError, "internal server error", nil)
			}
		}()
		return c.Next()
	}
}
