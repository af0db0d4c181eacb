package connect

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
)

// JSONBody decodes a JSON request body into P and stores it with WithPayload.
// Requests without a body are passed on unchanged. A body that is not valid
// JSON is rejected with 400.
func JSONBody[P any]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			var payload P
			if err := render.DecodeJSON(r.Body, &payload); err != nil {
				if errors.Is(err, io.EOF) {
					next.ServeHTTP(w, r)
					return
				}
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]string{"error": "invalid JSON payload: " + err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}
