// Package legalhold answers whether an access subject or service is under
// an active legal hold. A hold overrides every other decision signal: the
// composer denies on an active hold before consulting any rule.
//
// Two lookups are provided: an in-memory store for tests and embedded use,
// and a SQLite-backed store for deployments where holds must survive a
// process restart.
package legalhold
