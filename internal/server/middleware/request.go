package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestContext seeds the user context with the client IP and a request timeout, and logs each request
// with the id set by the requestid middleware.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx := WithClientIP(c.UserContext(), c.IP())
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.SetUserContext(ctx)
		err := c.Next()
		rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		log.Printf("http: id=%s %s %s status=%d dur=%s", rid, c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
