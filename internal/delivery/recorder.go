// Package delivery records webhook dispatches to a DeliveryStore.
package delivery

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tjfontaine/githubbot-connect/internal/server"
	"github.com/tjfontaine/githubbot-connect/internal/storage"
	"github.com/tjfontaine/githubbot-connect/pkg/connect"
)

// DeliveryHeader carries GitHub's unique ID for each delivery.
const DeliveryHeader = "X-GitHub-Delivery"

type deliveryIDKey struct{}

// WithDeliveryID stores the GitHub delivery ID in ctx.
func WithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryIDKey{}, id)
}

// DeliveryID returns the GitHub delivery ID stored in ctx.
func DeliveryID(ctx context.Context) string {
	id, _ := ctx.Value(deliveryIDKey{}).(string)
	return id
}

// DeliveryIDMiddleware copies the X-GitHub-Delivery header into the request context.
func DeliveryIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(DeliveryHeader); id != "" {
			r = r.WithContext(WithDeliveryID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Recorder wraps a bot and persists a Delivery for every dispatch.
// Persistence is best effort: failures are logged and never change the
// dispatch outcome.
type Recorder[P, R any] struct {
	next    connect.Bot[P, R]
	store   storage.DeliveryStore
	logger  *slog.Logger
	timeout time.Duration
}

var _ connect.Bot[any, any] = (*Recorder[any, any])(nil)

// NewRecorder creates a Recorder. A nil store disables recording.
func NewRecorder[P, R any](next connect.Bot[P, R], store storage.DeliveryStore, logger *slog.Logger) *Recorder[P, R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder[P, R]{
		next:    next,
		store:   store,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Events returns the wrapped bot's events.
func (rec *Recorder[P, R]) Events() []string {
	return rec.next.Events()
}

// Dispatch forwards to the wrapped bot and records the outcome. The error is
// returned unchanged.
func (rec *Recorder[P, R]) Dispatch(ctx context.Context, event string, payload P) (R, error) {
	start := time.Now()
	results, err := rec.next.Dispatch(ctx, event, payload)
	rec.record(ctx, event, start, err)
	return results, err
}

func (rec *Recorder[P, R]) record(ctx context.Context, event string, start time.Time, dispatchErr error) {
	if rec.store == nil {
		return
	}

	d := &storage.Delivery{
		Event:      event,
		DeliveryID: DeliveryID(ctx),
		RequestID:  server.GetRequestID(ctx),
		Status:     storage.StatusSucceeded,
		Duration:   time.Since(start),
		CreatedAt:  start,
	}
	if dispatchErr != nil {
		d.Status = storage.StatusFailed
		d.Error = dispatchErr.Error()
	}

	// Detach from the request so a client disconnect does not drop the record.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rec.timeout)
	defer cancel()

	if err := rec.store.SaveDelivery(persistCtx, d); err != nil {
		rec.logger.Error("failed to record delivery",
			slog.String("event", event),
			slog.String("delivery_id", d.DeliveryID),
			slog.String("error", err.Error()),
		)
		return
	}

	rec.logger.Debug("delivery recorded",
		slog.String("id", d.ID),
		slog.String("event", event),
		slog.String("status", string(d.Status)),
	)
}
