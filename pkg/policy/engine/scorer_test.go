package engine

import (
	"math"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/temporal"
)

func scorerRequest(t *testing.T) *temporal.Tuple {
	t.Helper()
	request, err := temporal.NewTuple(temporal.Tuple{
		DataType:              "financial",
		DataSender:            "emp-1",
		DataRecipient:         "oncall-team",
		TransmissionPrinciple: "need_to_know",
		TemporalContext: &temporal.TemporalContext{
			Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			Situation: temporal.SituationNormal,
		},
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return request
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestScoreAllWildcardNeutral(t *testing.T) {
	request := scorerRequest(t)
	rule := policy.Rule{
		ID: "WILD", Action: policy.ActionAllow,
		Tuples: policy.TupleMatchers{}, // no declared tuple fields
	}

	result := scoreRule(request, &rule)
	if !result.matched {
		t.Fatal("rule should match")
	}
	// Zero temporal constraints earn the neutral 0.5 credit, normalized by
	// the fixed six-dimension denominator.
	if !approx(result.score, 0.5/6.0) {
		t.Errorf("score = %v, want %v", result.score, 0.5/6.0)
	}
}

func TestScoreWildcardVsExact(t *testing.T) {
	request := scorerRequest(t)
	normal := temporal.SituationNormal

	wildcard := policy.Rule{
		ID: "WILD", Action: policy.ActionAllow,
		Tuples: policy.TupleMatchers{
			DataType: &policy.Matcher{Wildcard: true},
		},
	}
	exact := policy.Rule{
		ID: "EXACT", Action: policy.ActionAllow,
		Tuples: policy.TupleMatchers{
			DataType: &policy.Matcher{Values: []string{"financial"}},
		},
		Temporal: policy.TemporalConstraints{Situation: &normal},
	}

	wildScore := scoreRule(request, &wildcard)
	exactScore := scoreRule(request, &exact)

	// Wildcard tuple field: 0.5; no temporal constraints: 0.5 → 1.0/6.
	if !approx(wildScore.score, 1.0/6.0) {
		t.Errorf("wildcard score = %v, want %v", wildScore.score, 1.0/6.0)
	}
	// Exact tuple field: 1.0; matched situation: 1.0 → 2.0/6.
	if !approx(exactScore.score, 2.0/6.0) {
		t.Errorf("exact score = %v, want %v", exactScore.score, 2.0/6.0)
	}
	if exactScore.score <= wildScore.score {
		t.Error("exact+temporal match must outscore all-wildcard")
	}
}

func TestScoreEliminationOnMismatch(t *testing.T) {
	request := scorerRequest(t)
	emergency := temporal.SituationEmergency

	tests := []struct {
		name string
		rule policy.Rule
	}{
		{
			name: "tuple field mismatch",
			rule: policy.Rule{
				ID: "R", Action: policy.ActionAllow,
				Tuples: policy.TupleMatchers{DataType: &policy.Matcher{Values: []string{"medical"}}},
			},
		},
		{
			name: "temporal mismatch eliminates despite tuple match",
			rule: policy.Rule{
				ID: "R", Action: policy.ActionAllow,
				Tuples:   policy.TupleMatchers{DataType: &policy.Matcher{Values: []string{"financial"}}},
				Temporal: policy.TemporalConstraints{Situation: &emergency},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scoreRule(request, &tt.rule)
			if result.matched || result.score != 0 {
				t.Errorf("expected elimination, got matched=%v score=%v", result.matched, result.score)
			}
		})
	}
}

func TestScoreDataFreshness(t *testing.T) {
	maxAge := 600
	rule := policy.Rule{
		ID: "FRESH", Action: policy.ActionAllow,
		Temporal: policy.TemporalConstraints{MaxDataFreshnessSeconds: &maxAge},
	}

	fresh := 300
	stale := 1200

	tests := []struct {
		name      string
		freshness *int
		matched   bool
	}{
		{"unknown freshness passes", nil, true},
		{"fresh data passes", &fresh, true},
		{"stale data eliminates", &stale, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := scorerRequest(t)
			request.TemporalContext.DataFreshnessSeconds = tt.freshness

			result := scoreRule(request, &rule)
			if result.matched != tt.matched {
				t.Errorf("matched = %v, want %v", result.matched, tt.matched)
			}
		})
	}
}

func TestBestMatchStrictlyHigherAndTieBreak(t *testing.T) {
	request := scorerRequest(t)

	ruleA := policy.Rule{
		ID: "A", Action: policy.ActionAllow,
		Tuples: policy.TupleMatchers{DataType: &policy.Matcher{Values: []string{"financial"}}},
	}
	ruleB := policy.Rule{
		ID: "B", Action: policy.ActionDeny,
		Tuples: policy.TupleMatchers{DataSender: &policy.Matcher{Values: []string{"emp-1"}}},
	}
	ruleC := policy.Rule{
		ID: "C", Action: policy.ActionDeny,
		Tuples: policy.TupleMatchers{
			DataType:   &policy.Matcher{Values: []string{"financial"}},
			DataSender: &policy.Matcher{Values: []string{"emp-1"}},
		},
	}

	best, score := bestMatch(request, []policy.Rule{ruleA, ruleB, ruleC})
	if best == nil || best.ID != "C" {
		t.Fatalf("best = %v, want C", best)
	}
	if !approx(score, 2.5/6.0) {
		t.Errorf("score = %v, want %v", score, 2.5/6.0)
	}

	// A and B tie; the earlier declaration wins.
	best, _ = bestMatch(request, []policy.Rule{ruleA, ruleB})
	if best == nil || best.ID != "A" {
		t.Errorf("tie-break: best = %v, want A", best)
	}

	best, _ = bestMatch(request, nil)
	if best != nil {
		t.Error("no rules should yield no best match")
	}
}
