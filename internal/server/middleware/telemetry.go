package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	telemetryotel "biometric-attendance/backend/internal/telemetry/otel"
)

// Tracing returns a handler that wraps each request in a server span and counts requests by route and
// status. Providers are read from the global otel state at construction.
func Tracing() fiber.Handler {
	tracer := telemetryotel.Tracer()
	requests, err := telemetryotel.Meter().Int64Counter("attendance.http.requests",
		metric.WithDescription("HTTP requests by route and status"))
	if err != nil {
		requests = nil
	}
	return func(c *fiber.Ctx) error {
		ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}
		if requests != nil {
			requests.Add(ctx, 1, metric.WithAttributes(
				attribute.String("route", route),
				attribute.Int("status", status),
			))
		}
		return err
	}
}
