// Package registration installs the built-in webhook handlers.
package registration

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/tjfontaine/githubbot-connect/internal/bot"
)

// Payload is the decoded JSON body of a webhook delivery.
type Payload = map[string]any

// HandledKey is the payload field acknowledgements are appended to.
const HandledKey = "handled"

// RegisterBuiltins registers the default handlers on b: ping deliveries are
// answered with a pong, every other known event is acknowledged.
func RegisterBuiltins(b *bot.Bot[Payload]) error {
	for _, event := range b.Events() {
		handler := Acknowledge(event)
		if event == "ping" {
			handler = Pong
		}
		if _, err := b.On(event, handler); err != nil {
			return fmt.Errorf("register %s: %w", event, err)
		}
	}
	return nil
}

// Acknowledge returns a handler appending "<event> handled" to the payload's
// handled list.
func Acknowledge(event string) bot.Handler[Payload] {
	return func(ctx context.Context, payload Payload) (Payload, error) {
		out := clone(payload)
		handled, _ := out[HandledKey].([]any)
		out[HandledKey] = append(slices.Clone(handled), event+" handled")
		return out, nil
	}
}

// Pong answers GitHub's ping delivery, echoing the hook id and zen message.
func Pong(ctx context.Context, payload Payload) (Payload, error) {
	out := Payload{"pong": true}
	if zen, ok := payload["zen"]; ok {
		out["zen"] = zen
	}
	if hookID, ok := payload["hook_id"]; ok {
		out["hook_id"] = hookID
	}
	return out, nil
}

func clone(payload Payload) Payload {
	out := make(Payload, len(payload)+1)
	maps.Copy(out, payload)
	return out
}
