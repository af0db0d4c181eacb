package connect

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventHeader is the header GitHub uses to name the webhook event.
const EventHeader = "X-GitHub-Event"

// Bot is the collaborator an Adapter dispatches to. Implementations must be
// safe for concurrent use; the adapter shares one Bot across all requests.
type Bot[P, R any] interface {
	// Events lists the event names the bot handles.
	Events() []string
	// Dispatch runs the handlers registered for event and returns their
	// aggregated result or the first error.
	Dispatch(ctx context.Context, event string, payload P) (R, error)
}

// Adapter turns a Bot into HTTP middleware.
type Adapter[P, R any] struct {
	bot    Bot[P, R]
	header string
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures an Adapter.
type Option func(*adapterConfig)

type adapterConfig struct {
	header string
	logger *slog.Logger
	tracer trace.Tracer
}

// WithEventHeader overrides the header the event name is read from.
func WithEventHeader(name string) Option {
	return func(c *adapterConfig) {
		if name != "" {
			c.header = name
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *adapterConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *adapterConfig) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New creates an Adapter for bot.
func New[P, R any](bot Bot[P, R], opts ...Option) *Adapter[P, R] {
	cfg := adapterConfig{
		header: EventHeader,
		logger: slog.Default(),
		tracer: otel.Tracer("github.com/tjfontaine/githubbot-connect/pkg/connect"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Adapter[P, R]{
		bot:    bot,
		header: cfg.header,
		logger: cfg.logger,
		tracer: cfg.tracer,
	}
}

// MiddlewareOptions controls how a middleware resolves successful dispatches.
type MiddlewareOptions struct {
	// Send writes the results as the JSON response instead of forwarding
	// them to the next handler.
	Send bool
}

// MiddlewareOption configures a single middleware instance.
type MiddlewareOption func(*MiddlewareOptions)

// WithSend enables or disables send mode.
func WithSend(send bool) MiddlewareOption {
	return func(o *MiddlewareOptions) {
		o.Send = send
	}
}

// Middleware returns a middleware bound to the adapter's bot. The returned
// middleware shares no mutable state with other middlewares from the same
// adapter.
func (a *Adapter[P, R]) Middleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	var o MiddlewareOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			event := r.Header.Get(a.header)
			if event == "" || !slices.Contains(a.bot.Events(), event) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			payload, _ := Payload[P](ctx)
			results, err := a.dispatch(ctx, event, payload)
			if err != nil {
				a.logger.DebugContext(ctx, "webhook dispatch failed",
					slog.String("event", event),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r.WithContext(WithError(ctx, err)))
				return
			}

			if o.Send {
				a.logger.DebugContext(ctx, "webhook handled", slog.String("event", event), slog.String("mode", "send"))
				render.JSON(w, r, results)
				return
			}

			a.logger.DebugContext(ctx, "webhook handled", slog.String("event", event), slog.String("mode", "forward"))
			next.ServeHTTP(w, r.WithContext(WithResults(ctx, results)))
		})
	}
}

func (a *Adapter[P, R]) dispatch(ctx context.Context, event string, payload P) (R, error) {
	ctx, span := a.tracer.Start(ctx, "connect.dispatch",
		trace.WithAttributes(attribute.String("github.event", event)),
	)
	defer span.End()

	results, err := a.bot.Dispatch(ctx, event, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return results, err
}
