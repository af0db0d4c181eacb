package connect

import "context"

type payloadKey struct{}

type resultsKey struct{}

type errorKey struct{}

// forwarded wraps results so a nil value is still distinguishable from no
// results at all.
type forwarded[R any] struct {
	results R
}

func (forwarded[R]) isForwarded() {}

type forwardedMarker interface {
	isForwarded()
}

// WithPayload stores the decoded webhook payload for the adapter to dispatch.
func WithPayload[P any](ctx context.Context, payload P) context.Context {
	return context.WithValue(ctx, payloadKey{}, payload)
}

// Payload returns the payload stored by WithPayload. ok is false when no
// payload of type P is present.
func Payload[P any](ctx context.Context) (payload P, ok bool) {
	payload, ok = ctx.Value(payloadKey{}).(P)
	return payload, ok
}

// WithResults stores results forwarded to the next pipeline stage.
func WithResults[R any](ctx context.Context, results R) context.Context {
	return context.WithValue(ctx, resultsKey{}, forwarded[R]{results: results})
}

// Results returns the results forwarded by an adapter in forward mode. ok is
// true whenever results of type R were forwarded, including nil ones.
func Results[R any](ctx context.Context) (results R, ok bool) {
	f, ok := ctx.Value(resultsKey{}).(forwarded[R])
	return f.results, ok
}

// WithError stores a dispatch error forwarded to the next pipeline stage.
func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

// Error returns the dispatch error forwarded by an adapter, or nil.
func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

// Handled reports whether an adapter dispatched this request, successfully or not.
func Handled(ctx context.Context) bool {
	if ctx.Value(errorKey{}) != nil {
		return true
	}
	_, ok := ctx.Value(resultsKey{}).(forwardedMarker)
	return ok
}
