package engine

import (
	"reflect"
	"testing"

	"mercator-hq/saturn/pkg/temporal"
)

func TestDerivePermissions(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{"", nil},
		{"incident_responder", []string{"incident_investigation", "system_access_override", "log_analysis"}},
		{"security_incident_lead", []string{"security_override", "evidence_collection", "system_isolation", "incident_investigation"}},
		{"acting_supervisor", []string{"manage_team", "approve_requests"}},
		{"acting_manager", []string{"manage_team", "approve_requests", "access_management_reports"}},
		{"oncall_critical", []string{"emergency_full_hospital_access", "emergency_modify_any_record"}},
		// Keyword fallbacks for roles without a table entry.
		{"acting_incident_responder", []string{"incident_investigation", "system_access_override", "log_analysis"}},
		{"regional_security_lead", []string{"security_override", "evidence_collection", "system_isolation", "incident_investigation"}},
		{"oncall_weekend", []string{"oncall_basic_access"}},
		{"plain_user", nil},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := derivePermissions(tt.role)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("derivePermissions(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestDerivePermissionsFallbacksCombineAndDedup(t *testing.T) {
	// Matches both the incident keyword and the security+lead predicates.
	// incident_investigation appears in both sets and must not repeat.
	got := derivePermissions("security_incident_commander_lead")

	want := []string{
		"incident_investigation", "system_access_override", "log_analysis",
		"security_override", "evidence_collection", "system_isolation",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("combined fallback permissions = %v, want %v", got, want)
	}
}

func TestApplyRolePermissions(t *testing.T) {
	tc := &temporal.TemporalContext{
		TemporalRole:         "acting_supervisor",
		InheritedPermissions: []string{"manage_team"},
	}

	granted := applyRolePermissions(tc)
	if len(granted) != 2 {
		t.Errorf("granted %v, want the full acting_supervisor set", granted)
	}

	want := []string{"manage_team", "approve_requests"}
	if !reflect.DeepEqual(tc.InheritedPermissions, want) {
		t.Errorf("inherited = %v, want %v (existing grant kept, no duplicate)", tc.InheritedPermissions, want)
	}
}
