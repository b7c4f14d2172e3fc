// Package audit defines decision audit records, the sink interface the
// decision composer writes to, and an asynchronous recorder that buffers
// records and drains them to a storage backend.
//
// # Design
//
// Audit recording is fire-and-forget from the composer's point of view: a
// full buffer or a failing backend is logged and dropped, never propagated,
// because an audit outage must not change or suppress an access decision.
//
// # Storage
//
// Backends implement the Storage interface. The storage subpackage provides
// an in-memory backend for tests and a SQLite backend for deployments; the
// retention subpackage prunes aged records on a cron schedule.
package audit
