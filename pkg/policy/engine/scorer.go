package engine

import (
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/temporal"
)

// scoreDenominator normalizes rule scores against the canonical six tuple
// dimensions. It is constant regardless of how many constraints a rule
// declares, so constraint-rich rules can under-rank sparse ones; the
// behavior is intentional and relied upon by existing rule sets.
const scoreDenominator = 6.0

// matchScore is the outcome of scoring one rule against a request.
type matchScore struct {
	matched bool
	score   float64
}

// bestMatch runs the weighted scorer over the rule set and returns the
// non-eliminated rule with the strictly highest normalized score, or nil
// when no rule matches. Ties keep the earlier rule.
func bestMatch(request *temporal.Tuple, rules []policy.Rule) (*policy.Rule, float64) {
	var best *policy.Rule
	bestScore := 0.0

	for i := range rules {
		rule := &rules[i]
		result := scoreRule(request, rule)
		if result.matched && result.score > bestScore {
			best = rule
			bestScore = result.score
		}
	}
	return best, bestScore
}

// scoreRule computes the rule's normalized score against the request, or
// eliminates it on any declared-constraint mismatch.
func scoreRule(request *temporal.Tuple, rule *policy.Rule) matchScore {
	tupleScore, ok := scoreTupleFields(request, &rule.Tuples)
	if !ok {
		return matchScore{}
	}

	temporalScore, ok := scoreTemporalConstraints(request.TemporalContext, &rule.Temporal)
	if !ok {
		return matchScore{}
	}

	return matchScore{matched: true, score: (tupleScore + temporalScore) / scoreDenominator}
}

// scoreTupleFields scores the declared tuple matchers: 0.5 for a wildcard,
// 1.0 for an exact or list match, elimination on mismatch. Undeclared
// fields contribute nothing.
func scoreTupleFields(request *temporal.Tuple, matchers *policy.TupleMatchers) (float64, bool) {
	score := 0.0

	fields := []struct {
		matcher *policy.Matcher
		value   string
	}{
		{matchers.DataType, request.DataType},
		{matchers.DataSender, request.DataSender},
		{matchers.DataRecipient, request.DataRecipient},
		{matchers.TransmissionPrinciple, request.TransmissionPrinciple},
	}

	for _, f := range fields {
		if f.matcher == nil {
			continue
		}
		if f.matcher.Wildcard {
			score += 0.5
			continue
		}
		if !f.matcher.Matches(f.value) {
			return 0, false
		}
		score += 1.0
	}
	return score, true
}

// scoreTemporalConstraints scores the declared temporal constraints: 1.0
// each on match, elimination on mismatch. A rule declaring no temporal
// constraints receives a neutral 0.5 credit.
func scoreTemporalConstraints(tc *temporal.TemporalContext, constraints *policy.TemporalConstraints) (float64, bool) {
	if constraints.Count() == 0 {
		return 0.5, true
	}

	score := 0.0

	if constraints.Situation != nil {
		if tc.Situation != *constraints.Situation {
			return 0, false
		}
		score += 1.0
	}

	if constraints.RequireEmergencyOverride != nil {
		if tc.EmergencyOverride != *constraints.RequireEmergencyOverride {
			return 0, false
		}
		score += 1.0
	}

	if constraints.AccessWindow != nil {
		if !constraints.AccessWindow.Contains(tc.Timestamp) {
			return 0, false
		}
		score += 1.0
	}

	if constraints.TemporalRole != nil {
		if !constraints.TemporalRole.Matches(tc.TemporalRole) {
			return 0, false
		}
		score += 1.0
	}

	if constraints.MaxDataFreshnessSeconds != nil {
		// Unknown freshness passes the constraint.
		if tc.DataFreshnessSeconds != nil && *tc.DataFreshnessSeconds > *constraints.MaxDataFreshnessSeconds {
			return 0, false
		}
		score += 1.0
	}

	return score, true
}
