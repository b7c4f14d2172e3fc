package engine

import (
	"strings"

	"mercator-hq/saturn/pkg/temporal"
)

// rolePermissions is the fixed table mapping temporal role names to the
// permission sets they inherit. Exact matches are preferred; the keyword
// fallbacks below apply otherwise.
var rolePermissions = map[string][]string{
	"incident_responder":     {"incident_investigation", "system_access_override", "log_analysis"},
	"security_incident_lead": {"security_override", "evidence_collection", "system_isolation", "incident_investigation"},
	"acting_supervisor":      {"manage_team", "approve_requests"},
	"acting_manager":         {"manage_team", "approve_requests", "access_management_reports"},
	"oncall_critical":        {"emergency_full_hospital_access", "emergency_modify_any_record"},
}

// roleFallbacks are the keyword heuristics applied, in order, when a role
// has no exact table entry. Every matching predicate contributes its
// permissions; first-match-wins applies per predicate, not across them.
var roleFallbacks = []struct {
	predicate func(role string) bool
	perms     func() []string
}{
	{
		predicate: func(role string) bool {
			return strings.Contains(role, "incident") || strings.Contains(role, "responder")
		},
		perms: func() []string { return rolePermissions["incident_responder"] },
	},
	{
		predicate: func(role string) bool {
			return strings.Contains(role, "security") && strings.Contains(role, "lead")
		},
		perms: func() []string { return rolePermissions["security_incident_lead"] },
	},
	{
		predicate: func(role string) bool {
			return strings.HasPrefix(role, "oncall_")
		},
		perms: func() []string { return []string{"oncall_basic_access"} },
	},
}

// derivePermissions resolves the permission set for a temporal role:
// exact table entry first, then the ordered keyword fallbacks. The result
// is deduplicated preserving first-seen order.
func derivePermissions(role string) []string {
	if role == "" {
		return nil
	}

	var perms []string
	if exact, ok := rolePermissions[role]; ok {
		perms = append(perms, exact...)
	} else {
		for _, fb := range roleFallbacks {
			if fb.predicate(role) {
				perms = append(perms, fb.perms()...)
			}
		}
	}

	if len(perms) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(perms))
	out := perms[:0]
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// applyRolePermissions derives and attaches the context's temporal-role
// permissions, returning what was granted.
func applyRolePermissions(tc *temporal.TemporalContext) []string {
	perms := derivePermissions(tc.TemporalRole)
	if len(perms) > 0 {
		tc.GrantPermissions(perms)
	}
	return perms
}
