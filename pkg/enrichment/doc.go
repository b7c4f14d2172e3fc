// Package enrichment builds temporal contexts for access requests from
// organizational-relationship facts.
//
// # Overview
//
// The enricher answers "what is the temporal context of sender -> recipient
// right now?" by querying up to four independent relationship facts from the
// org graph provider, consulting a TTL cache, and tracking provider health
// in a sliding-window failure tracker:
//
//   - ContextCache: TTL-keyed store of previously built contexts, keyed by
//     (sender, recipient). Eviction is lazy, checked only on read.
//   - FailureTracker: sliding-window success/failure counter over
//     enrichment queries. Raises a one-shot latched alert when the failure
//     rate exceeds a threshold; the latch resets on the next success.
//   - Enricher: fans out the four queries concurrently, derives context
//     fields from whichever succeeded, and falls back to a minimal audit
//     context when all four fail.
//
// # Failure Semantics
//
// Provider errors never propagate to the caller: each failed query is
// recorded on the tracker and downgraded to "relationship unknown". A total
// outage produces the minimal fallback context (role "user", situation
// AUDIT, domain "unknown"), which is deliberately not cached so an outage
// cannot poison the cache with stale-safe defaults.
//
// # Thread Safety
//
// The cache and tracker are the only state shared across evaluations; both
// are mutex-guarded, and the cache stores and returns copies so in-flight
// requests never mutate cached contexts.
package enrichment
