package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/orggraph"
	"mercator-hq/saturn/pkg/temporal"
)

// fakeProvider lets each relationship query be stubbed independently.
type fakeProvider struct {
	reporting  func() (*orggraph.ReportingFact, error)
	department func() (*orggraph.DepartmentFact, error)
	projects   func() (*orggraph.ProjectsFact, error)
	roles      func() (*orggraph.RolesFact, error)
}

func (f *fakeProvider) ReportingRelationship(ctx context.Context, employeeID, managerID string) (*orggraph.ReportingFact, error) {
	return f.reporting()
}

func (f *fakeProvider) DepartmentRelationship(ctx context.Context, senderID, recipientID string) (*orggraph.DepartmentFact, error) {
	return f.department()
}

func (f *fakeProvider) SharedProjects(ctx context.Context, senderID, recipientID string) (*orggraph.ProjectsFact, error) {
	return f.projects()
}

func (f *fakeProvider) TemporalRoles(ctx context.Context, personID string, asOf time.Time) (*orggraph.RolesFact, error) {
	return f.roles()
}

func allFailingProvider(err error) *fakeProvider {
	return &fakeProvider{
		reporting:  func() (*orggraph.ReportingFact, error) { return nil, err },
		department: func() (*orggraph.DepartmentFact, error) { return nil, err },
		projects:   func() (*orggraph.ProjectsFact, error) { return nil, err },
		roles:      func() (*orggraph.RolesFact, error) { return nil, err },
	}
}

func newTestEnricher(provider orggraph.Provider) (*Enricher, *ContextCache, *FailureTracker) {
	cache := NewContextCache(time.Minute, nil)
	tracker := NewFailureTracker(time.Minute, 5.0, nil, nil)
	enricher := NewEnricher(provider, cache, tracker, Config{QueryTimeout: time.Second}, nil)
	return enricher, cache, tracker
}

func TestEnrichDerivesContextFields(t *testing.T) {
	asOf := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	roleStart := asOf.Add(-24 * time.Hour)
	roleEnd := asOf.Add(24 * time.Hour)

	provider := &fakeProvider{
		reporting: func() (*orggraph.ReportingFact, error) {
			return &orggraph.ReportingFact{IsDirectReport: true, RelationshipType: "direct"}, nil
		},
		department: func() (*orggraph.DepartmentFact, error) {
			return &orggraph.DepartmentFact{SameDepartment: true, Department: "Finance Ops"}, nil
		},
		projects: func() (*orggraph.ProjectsFact, error) {
			return &orggraph.ProjectsFact{ProjectIDs: []string{"atlas", "borealis"}}, nil
		},
		roles: func() (*orggraph.RolesFact, error) {
			return &orggraph.RolesFact{Roles: []orggraph.TemporaryRole{
				{RoleName: "Incident Responder", StartDate: &roleStart, EndDate: &roleEnd},
			}}, nil
		},
	}

	enricher, cache, _ := newTestEnricher(provider)
	tc := enricher.Enrich(context.Background(), "emp-5892", "emp-2109", "payroll", asOf)

	if tc.TemporalRole != "acting_incident_responder" {
		t.Errorf("temporal role = %q, want acting_incident_responder", tc.TemporalRole)
	}
	if tc.DataDomain != "dept_finance_ops" {
		t.Errorf("data domain = %q, want dept_finance_ops", tc.DataDomain)
	}
	if tc.EventCorrelation != "proj_atlas" {
		t.Errorf("event correlation = %q, want proj_atlas (first project wins)", tc.EventCorrelation)
	}
	if tc.AccessWindow == nil || tc.AccessWindow.End == nil || !tc.AccessWindow.End.Equal(roleEnd) {
		t.Error("access window not set from the acting role's validity interval")
	}

	if cached := cache.Get("emp-5892", "emp-2109"); cached == nil {
		t.Error("successful enrichment should populate the cache")
	}
}

func TestEnrichManagerWithoutActingRole(t *testing.T) {
	provider := &fakeProvider{
		reporting: func() (*orggraph.ReportingFact, error) {
			return &orggraph.ReportingFact{IsDirectReport: true}, nil
		},
		department: func() (*orggraph.DepartmentFact, error) {
			return &orggraph.DepartmentFact{}, nil
		},
		projects: func() (*orggraph.ProjectsFact, error) {
			return &orggraph.ProjectsFact{}, nil
		},
		roles: func() (*orggraph.RolesFact, error) {
			return &orggraph.RolesFact{}, nil
		},
	}

	enricher, _, _ := newTestEnricher(provider)
	tc := enricher.Enrich(context.Background(), "emp-1", "emp-2", "payroll", time.Time{})

	if tc.TemporalRole != "manager" {
		t.Errorf("temporal role = %q, want manager", tc.TemporalRole)
	}
	if tc.AccessWindow != nil {
		t.Error("no access window expected without an acting role")
	}
}

func TestEnrichExpiredActingRoleIgnored(t *testing.T) {
	asOf := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	expiredEnd := asOf.Add(-time.Hour)

	provider := &fakeProvider{
		reporting:  func() (*orggraph.ReportingFact, error) { return &orggraph.ReportingFact{}, nil },
		department: func() (*orggraph.DepartmentFact, error) { return &orggraph.DepartmentFact{}, nil },
		projects:   func() (*orggraph.ProjectsFact, error) { return &orggraph.ProjectsFact{}, nil },
		roles: func() (*orggraph.RolesFact, error) {
			return &orggraph.RolesFact{Roles: []orggraph.TemporaryRole{
				{RoleName: "acting_supervisor", EndDate: &expiredEnd},
			}}, nil
		},
	}

	enricher, _, _ := newTestEnricher(provider)
	tc := enricher.Enrich(context.Background(), "emp-1", "emp-2", "payroll", asOf)

	if tc.TemporalRole != "user" {
		t.Errorf("temporal role = %q, want user (expired role inactive)", tc.TemporalRole)
	}
}

func TestEnrichTotalOutageFallsBack(t *testing.T) {
	provider := allFailingProvider(errors.New("connection refused"))
	enricher, cache, tracker := newTestEnricher(provider)

	tc := enricher.Enrich(context.Background(), "emp-1", "emp-2", "payroll", time.Time{})

	if tc.TemporalRole != "user" {
		t.Errorf("fallback role = %q, want user", tc.TemporalRole)
	}
	if tc.Situation != temporal.SituationAudit {
		t.Errorf("fallback situation = %q, want AUDIT", tc.Situation)
	}
	if tc.DataDomain != "unknown" {
		t.Errorf("fallback data domain = %q, want unknown", tc.DataDomain)
	}

	// An outage must not poison the cache. The lookup below also counts a
	// miss, so check entries through stats first.
	if stats := cache.Stats(); stats.Entries != 0 {
		t.Errorf("cache entries = %d, want 0 after outage", stats.Entries)
	}

	stats := tracker.Stats()
	if stats.Failures != 4 {
		t.Errorf("tracker failures = %d, want 4 (one per query)", stats.Failures)
	}
	if stats.Successes != 0 {
		t.Errorf("tracker successes = %d, want 0 on total outage", stats.Successes)
	}
}

func TestEnrichPartialFailureStillSucceeds(t *testing.T) {
	provider := &fakeProvider{
		reporting: func() (*orggraph.ReportingFact, error) {
			return nil, errors.New("timeout")
		},
		department: func() (*orggraph.DepartmentFact, error) {
			return &orggraph.DepartmentFact{SameDepartment: true, Department: "engineering"}, nil
		},
		projects: func() (*orggraph.ProjectsFact, error) { return nil, errors.New("timeout") },
		roles:    func() (*orggraph.RolesFact, error) { return nil, errors.New("timeout") },
	}

	enricher, cache, tracker := newTestEnricher(provider)
	tc := enricher.Enrich(context.Background(), "emp-1", "emp-2", "payroll", time.Time{})

	if tc.DataDomain != "dept_engineering" {
		t.Errorf("data domain = %q, want dept_engineering", tc.DataDomain)
	}

	stats := tracker.Stats()
	if stats.Failures != 3 || stats.Successes != 1 {
		t.Errorf("tracker = %d/%d, want 3 failures and 1 success", stats.Failures, stats.Successes)
	}

	if stats := cache.Stats(); stats.Entries != 1 {
		t.Error("partial success should still populate the cache")
	}
}

func TestEnrichCacheHitSkipsProvider(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		reporting: func() (*orggraph.ReportingFact, error) {
			calls++
			return &orggraph.ReportingFact{}, nil
		},
		department: func() (*orggraph.DepartmentFact, error) { return &orggraph.DepartmentFact{}, nil },
		projects:   func() (*orggraph.ProjectsFact, error) { return &orggraph.ProjectsFact{}, nil },
		roles:      func() (*orggraph.RolesFact, error) { return &orggraph.RolesFact{}, nil },
	}

	enricher, _, tracker := newTestEnricher(provider)
	enricher.Enrich(context.Background(), "emp-1", "emp-2", "payroll", time.Time{})
	enricher.Enrich(context.Background(), "emp-1", "emp-2", "payroll", time.Time{})

	if calls != 1 {
		t.Errorf("provider called %d times, want 1 (second call served from cache)", calls)
	}
	if stats := tracker.Stats(); stats.Successes != 2 {
		t.Errorf("successes = %d, want 2 (cache hit records a success)", stats.Successes)
	}
}
