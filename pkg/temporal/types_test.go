package temporal

import (
	"errors"
	"testing"
	"time"
)

func TestNewTemporalContextEmergencyInvariant(t *testing.T) {
	tests := []struct {
		name    string
		ctx     TemporalContext
		wantErr bool
	}{
		{
			name:    "override without authorization id fails",
			ctx:     TemporalContext{EmergencyOverride: true},
			wantErr: true,
		},
		{
			name: "override with authorization id succeeds",
			ctx: TemporalContext{
				EmergencyOverride:        true,
				EmergencyAuthorizationID: "AUTH-123",
			},
		},
		{
			name: "no override needs no authorization",
			ctx:  TemporalContext{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTemporalContext(tt.ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrMissingEmergencyAuthorization) {
					t.Errorf("expected ErrMissingEmergencyAuthorization, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.EmergencyOverride != tt.ctx.EmergencyOverride {
				t.Errorf("emergency override changed: got %v", got.EmergencyOverride)
			}
			if got.EmergencyAuthorizationID != tt.ctx.EmergencyAuthorizationID {
				t.Errorf("authorization id changed: got %q", got.EmergencyAuthorizationID)
			}
		})
	}
}

func TestNewTemporalContextDefaults(t *testing.T) {
	got, err := NewTemporalContext(TemporalContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not defaulted")
	}
	if got.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC", got.Timezone)
	}
	if got.Situation != SituationNormal {
		t.Errorf("situation = %q, want NORMAL", got.Situation)
	}
}

func TestNewTemporalContextInvalidWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := NewTemporalContext(TemporalContext{
		AccessWindow: &TimeWindow{Start: &start, End: &end},
	})
	if err == nil {
		t.Fatal("expected error for start after end")
	}
}

func TestTimeWindowContains(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window *TimeWindow
		at     time.Time
		want   bool
	}{
		{"inside bounded", &TimeWindow{Start: &start, End: &end}, start.Add(time.Hour), true},
		{"before start", &TimeWindow{Start: &start, End: &end}, start.Add(-time.Minute), false},
		{"after end", &TimeWindow{Start: &start, End: &end}, end.Add(time.Minute), false},
		{"open start", &TimeWindow{End: &end}, start.Add(-24 * time.Hour), true},
		{"open end", &TimeWindow{Start: &start}, end.Add(24 * time.Hour), true},
		{"nil window", nil, start, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestRiskLevelStep(t *testing.T) {
	tests := []struct {
		from  RiskLevel
		delta int
		want  RiskLevel
	}{
		{RiskLow, 1, RiskMedium},
		{RiskMedium, 2, RiskCritical},
		{RiskHigh, -1, RiskMedium},
		{RiskLow, -1, RiskLow},
		{RiskCritical, 3, RiskCritical},
		{RiskMedium, 0, RiskMedium},
	}

	for _, tt := range tests {
		if got := tt.from.Step(tt.delta); got != tt.want {
			t.Errorf("%s.Step(%d) = %s, want %s", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	end := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	freshness := 120
	orig := &TemporalContext{
		Timestamp:            time.Now().UTC(),
		AccessWindow:         &TimeWindow{End: &end},
		DataFreshnessSeconds: &freshness,
		InheritedPermissions: []string{"log_analysis"},
		OrgContextUser:       map[string]any{"dept": "finance"},
	}

	clone := orig.Clone()
	clone.AccessWindow.End = nil
	*clone.DataFreshnessSeconds = 999
	clone.InheritedPermissions[0] = "changed"
	clone.OrgContextUser["dept"] = "changed"

	if orig.AccessWindow.End == nil {
		t.Error("clone shares access window")
	}
	if *orig.DataFreshnessSeconds != 120 {
		t.Error("clone shares freshness pointer")
	}
	if orig.InheritedPermissions[0] != "log_analysis" {
		t.Error("clone shares permissions slice")
	}
	if orig.OrgContextUser["dept"] != "finance" {
		t.Error("clone shares org context map")
	}
}

func TestGrantPermissionsDedup(t *testing.T) {
	tc := &TemporalContext{InheritedPermissions: []string{"a", "b"}}
	tc.GrantPermissions([]string{"b", "c", "a", "c"})

	want := []string{"a", "b", "c"}
	if len(tc.InheritedPermissions) != len(want) {
		t.Fatalf("got %v, want %v", tc.InheritedPermissions, want)
	}
	for i, p := range want {
		if tc.InheritedPermissions[i] != p {
			t.Errorf("permission[%d] = %q, want %q", i, tc.InheritedPermissions[i], p)
		}
	}
}

func TestNewTupleRequiresContext(t *testing.T) {
	if _, err := NewTuple(Tuple{DataType: "financial"}); err == nil {
		t.Fatal("expected error for missing temporal context")
	}

	tup, err := NewTuple(Tuple{
		DataType:        "financial",
		TemporalContext: &TemporalContext{EmergencyOverride: true, EmergencyAuthorizationID: "AUTH-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tup.TemporalContext.Situation != SituationNormal {
		t.Error("context defaults not applied through NewTuple")
	}
}
