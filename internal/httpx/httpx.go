// Package httpx provides helper functions for HTTP responses and request
// logging.
package httpx

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

// RequestIDKey is where middleware stores the per-request id.
const RequestIDKey = "request_id"

// JSON writes a JSON response with the given status code.
func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// Error writes a JSON error response with the given status code and message.
func Error(c *fiber.Ctx, status int, msg string) error {
	return JSON(c, status, fiber.Map{"error": msg})
}

// RequestID tags every request with a ULID and logs a line on completion.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := ulid.Make().String()
		c.Locals(RequestIDKey, id)
		c.Set("X-Request-ID", id)

		start := time.Now()
		err := c.Next()
		log.Printf("%s %s %s -> %d (%s)", id, c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
