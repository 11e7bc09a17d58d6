// Package reqctx carries request-scoped values through context.Context: the
// request metadata set by the HTTP middleware, the verified token claims and
// the authenticated caller.
//
// Metadata is present on every HTTP request. Claims and the principal are set
// together, and only after the access token and its session were verified.
// Code outside HTTP, such as the CLI and the NATS workers, sees none of them.
package reqctx
