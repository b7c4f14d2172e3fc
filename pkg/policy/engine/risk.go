package engine

import (
	"strings"
	"time"

	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/temporal"
)

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// sensitiveDataKeywords mark data types whose access raises the risk of a
// matched-rule decision.
var sensitiveDataKeywords = []string{"financial", "personal", "health", "security"}

// calculateRiskLevel classifies a matched-rule decision by counting risk
// factors: sensitive data type, after-hours access, emergency context, and
// a permissive rule action. Three or more factors is high, two is medium,
// otherwise low.
func calculateRiskLevel(request *temporal.Tuple, rule *policy.Rule) temporal.RiskLevel {
	factors := 0

	lower := strings.ToLower(request.DataType)
	for _, kw := range sensitiveDataKeywords {
		if strings.Contains(lower, kw) {
			factors++
			break
		}
	}

	if !request.TemporalContext.BusinessHours {
		factors++
	}
	if request.TemporalContext.EmergencyOverride {
		factors++
	}
	if rule.Action == policy.ActionAllow {
		factors++
	}

	switch {
	case factors >= 3:
		return temporal.RiskHigh
	case factors >= 2:
		return temporal.RiskMedium
	default:
		return temporal.RiskLow
	}
}
