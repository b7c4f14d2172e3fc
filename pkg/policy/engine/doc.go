// Package engine evaluates access requests against the temporal rule set
// and composes the final decision.
//
// # Evaluation Strategies
//
// Two strategies coexist. The lightweight Evaluator tries rules in order
// and returns the first match (default BLOCK). The weighted scorer, used
// by the Composer, scores every rule against the request and picks the
// strictly best non-eliminated match, breaking ties by declaration order.
//
// # Decision Composition
//
// The Composer is a priority-ordered state machine over one evaluation:
// legal hold, emergency override, service bypass, best-rule match, and
// default deny, in that order, each step short-circuiting on a decision.
// Every path then receives a next-review time, organizational-context
// confidence/risk adjustment, an overriding acting-role expiry check, and
// unconditional audit recording. A decision is always returned; collaborator
// failures degrade the decision's inputs, never abort it.
package engine
