// Package temporal defines the request and context data model for the
// temporal access-control decision engine.
//
// # Overview
//
// The package extends the classical contextual-integrity tuple (data type,
// subject, sender, recipient, transmission principle) with a sixth
// dimension: temporal context. The temporal context carries the "when" of a
// request — timestamp, business-hours flag, emergency state, situation,
// temporal role, and access window — plus organizational side-channel
// fields that are derived during enrichment and evaluation.
//
// # Construction Invariants
//
// NewTemporalContext is the single hard validation gate in the model: an
// emergency override without a non-empty authorization ID fails construction
// immediately. This is the only error in the engine that halts processing;
// every other failure degrades to "fact unknown" downstream.
//
// # Lifecycle
//
// A Tuple is constructed once per access request and is logically immutable
// except for the temporal context's derived fields (inherited permissions,
// organizational context snapshots), which are appended during evaluation
// and never retracted. Nothing in this package outlives a single evaluation
// call; only the enrichment cache and failure tracker persist across calls,
// and they hold copies of contexts rather than shared references.
package temporal
