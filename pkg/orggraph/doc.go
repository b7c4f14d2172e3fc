// Package orggraph defines the organizational-relationship provider
// boundary and its HTTP implementation.
//
// # Overview
//
// The decision engine consumes four idempotent relationship facts from an
// external knowledge-graph service:
//
//   - reporting relationship between an employee and a manager
//   - department relationship between a sender and a recipient
//   - shared projects between a sender and a recipient
//   - temporal (acting) roles for a person as of a timestamp
//
// The Provider interface is the only coupling between the engine and the
// graph service; the engine never sees HTTP details. The service may be
// wholly or partially unreachable at any time, so every operation returns a
// typed error from a fixed taxonomy (connection, auth, rate limit, not
// found, validation) that the enricher downgrades to "fact unknown".
//
// # HTTP Implementation
//
// HTTPProvider issues requests with per-request timeouts, a small bounded
// retry count with exponential backoff, and a client-side rate-limit
// self-check. Retries respect context cancellation so a caller-supplied
// deadline bounds the whole call.
package orggraph
