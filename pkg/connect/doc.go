// Package connect adapts a webhook-driven bot to net/http middleware.
//
// An Adapter wraps a Bot collaborator. Each call to Adapter.Middleware returns
// an independent middleware that inspects the X-GitHub-Event header of the
// inbound request and, when the event is one the bot knows, dispatches the
// request payload to it.
//
// # Outcomes
//
// Every request ends in exactly one of four outcomes:
//
//   - pass-through: the header is missing or names an event the bot does not
//     know. The next handler is called with the untouched request.
//   - error-forward: Dispatch returned an error. The next handler is called
//     and Error(r.Context()) returns that exact error value.
//   - response-write: Dispatch succeeded and the middleware was built with
//     WithSend(true). The results are written as the JSON response body and
//     the next handler is not called.
//   - result-forward: Dispatch succeeded in the default mode. The next handler
//     is called and Results[R](r.Context()) returns the results.
//
// # Payloads
//
// The adapter never reads the request body. An upstream stage stores the
// decoded payload with WithPayload; JSONBody is provided for the common case:
//
//	adapter := connect.New[Payload, Payload](myBot)
//	r.With(connect.JSONBody[Payload]()).
//		With(adapter.Middleware(connect.WithSend(true))).
//		Post("/webhooks", notHandled)
//
// A missing payload is dispatched as the zero value of P.
package connect
