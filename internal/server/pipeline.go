package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tjfontaine/githubbot-connect/pkg/connect"
)

// statusCoder lets dispatch errors choose their HTTP status.
type statusCoder interface {
	StatusCode() int
}

// ErrorResponse is the JSON body written for forwarded dispatch errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RenderForwarded is the terminal stage behind a webhook adapter. It renders
// whatever the adapter forwarded: a dispatch error becomes a JSON error,
// results become the JSON body, and a request the adapter passed through
// gets 204 No Content.
func RenderForwarded[R any]() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !connect.Handled(ctx) {
			AddLogField(ctx, "webhook", "not_handled")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := connect.Error(ctx); err != nil {
			RenderError(w, r, err)
			return
		}

		results, ok := connect.Results[R](ctx)
		if !ok {
			var want R
			RenderError(w, r, fmt.Errorf("forwarded results are not %T", want))
			return
		}
		render.JSON(w, r, results)
	}
}

// RenderError writes err as an ErrorResponse. The status defaults to 500
// unless err carries its own via a StatusCode method.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)

	status := http.StatusInternalServerError
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() >= 400 {
		status = sc.StatusCode()
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:     err.Error(),
		RequestID: GetRequestID(r.Context()),
	})
}
