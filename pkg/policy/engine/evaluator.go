package engine

import (
	"log/slog"

	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/temporal"
)

// EvalResult is the outcome of the lightweight first-match path.
type EvalResult struct {
	Action        string   `json:"action"`
	MatchedRuleID string   `json:"matched_rule_id,omitempty"`
	Reasons       []string `json:"reasons"`
}

// Evaluator is the lightweight first-match strategy: rules are tried in
// declaration order and the first match wins. It carries no state beyond
// its logger and is safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a first-match evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default().With("component", "engine.evaluator")
	}
	return &Evaluator{logger: logger}
}

// Evaluate returns the first matching rule's action, or BLOCK when no rule
// matches. The evaluation timestamp is the request context's timestamp.
func (e *Evaluator) Evaluate(request *temporal.Tuple, rules []policy.Rule) EvalResult {
	now := request.TemporalContext.Timestamp

	for i := range rules {
		rule := &rules[i]
		if !firstMatchRule(request, rule) {
			continue
		}
		e.logger.Debug("rule matched",
			"rule_id", rule.ID,
			"action", rule.Action,
		)
		return EvalResult{
			Action:        string(rule.Action),
			MatchedRuleID: rule.ID,
			Reasons:       []string{"matched rule"},
		}
	}

	e.logger.Debug("no rule matched, defaulting to block",
		"data_type", request.DataType,
		"timestamp", now,
	)
	return EvalResult{
		Action:  string(policy.ActionBlock),
		Reasons: []string{"no rule matched"},
	}
}

// firstMatchRule reports whether the rule matches under first-match
// semantics: declared tuple fields must match, a declared situation must
// equal the context's, a require_emergency_override of true requires the
// override flag, and a declared access window must contain the timestamp.
func firstMatchRule(request *temporal.Tuple, rule *policy.Rule) bool {
	tc := request.TemporalContext

	if !rule.Tuples.DataType.Matches(request.DataType) {
		return false
	}
	if !rule.Tuples.DataSender.Matches(request.DataSender) {
		return false
	}
	if !rule.Tuples.DataRecipient.Matches(request.DataRecipient) {
		return false
	}

	if rule.Temporal.Situation != nil && *rule.Temporal.Situation != tc.Situation {
		return false
	}
	if rule.Temporal.RequireEmergencyOverride != nil &&
		*rule.Temporal.RequireEmergencyOverride && !tc.EmergencyOverride {
		return false
	}
	if rule.Temporal.AccessWindow != nil && !rule.Temporal.AccessWindow.Contains(tc.Timestamp) {
		return false
	}

	return true
}
