package orggraph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, handler http.Handler) (*HTTPProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.AuthToken = "test-token"
	config.MaxRetries = 2
	config.RetryBackoff = time.Millisecond
	return NewHTTPProvider(config, nil), server
}

func TestReportingRelationshipDecodesAndSendsHeaders(t *testing.T) {
	var gotAuth, gotService, gotEmployee string
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotService = r.Header.Get("X-Service-ID")
		gotEmployee = r.URL.Query().Get("employee")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"is_direct_report": true, "relationship_type": "direct"}`))
	}))

	fact, err := provider.ReportingRelationship(context.Background(), "emp-1", "emp-2")
	if err != nil {
		t.Fatalf("ReportingRelationship: %v", err)
	}
	if !fact.IsDirectReport || fact.RelationshipType != "direct" {
		t.Errorf("fact = %+v, want direct report", fact)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotService != "saturn-engine" {
		t.Errorf("X-Service-ID = %q, want the default identity", gotService)
	}
	if gotEmployee != "emp-1" {
		t.Errorf("employee param = %q", gotEmployee)
	}
}

func TestSharedProjectsRequestsActiveOnly(t *testing.T) {
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("project_status") != "active" {
			t.Errorf("project_status = %q, want active", r.URL.Query().Get("project_status"))
		}
		w.Write([]byte(`{"project_ids": ["atlas", "borealis"]}`))
	}))

	fact, err := provider.SharedProjects(context.Background(), "emp-1", "emp-2")
	if err != nil {
		t.Fatalf("SharedProjects: %v", err)
	}
	if len(fact.ProjectIDs) != 2 || fact.ProjectIDs[0] != "atlas" {
		t.Errorf("projects = %v", fact.ProjectIDs)
	}
}

func TestTemporalRolesDecodesValidityBounds(t *testing.T) {
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("as_of") == "" {
			t.Error("as_of param missing")
		}
		w.Write([]byte(`{"roles": [{"role_name": "Supervisor", "end_date": "2026-03-10T00:00:00Z"}]}`))
	}))

	fact, err := provider.TemporalRoles(context.Background(), "emp-1", time.Now())
	if err != nil {
		t.Fatalf("TemporalRoles: %v", err)
	}
	if len(fact.Roles) != 1 || fact.Roles[0].RoleName != "Supervisor" {
		t.Fatalf("roles = %+v", fact.Roles)
	}
	if fact.Roles[0].EndDate == nil {
		t.Error("end_date not decoded")
	}
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"401 auth", http.StatusUnauthorized, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e)
		}},
		{"403 auth", http.StatusForbidden, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e)
		}},
		{"429 rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *RateLimitError
			return errors.As(err, &e)
		}},
		{"404 not found", http.StatusNotFound, func(err error) bool {
			var e *NotFoundError
			return errors.As(err, &e)
		}},
		{"422 validation", http.StatusUnprocessableEntity, func(err error) bool {
			var e *ValidationError
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := provider.DepartmentRelationship(context.Background(), "a", "b")
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("error %T not mapped to the expected type", err)
			}
		})
	}
}

func TestRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"same_department": true, "department": "engineering"}`))
	}))

	fact, err := provider.DepartmentRelationship(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("DepartmentRelationship: %v", err)
	}
	if !fact.SameDepartment {
		t.Error("fact not decoded after retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3 (two retries)", got)
	}
}

func TestRetriesExhaustedReturnsAPIError(t *testing.T) {
	var calls atomic.Int32
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := provider.DepartmentRelationship(context.Background(), "a", "b")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v (%T), want APIError", err, err)
	}
	// MaxRetries 2: the last attempt's 5xx is returned to the caller via the
	// status mapper, so the server sees initial + 2 retries.
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestMalformedBodyReturnsAPIError(t *testing.T) {
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	_, err := provider.DepartmentRelationship(context.Background(), "a", "b")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v (%T), want APIError for malformed body", err, err)
	}
}

func TestClientSideRateLimit(t *testing.T) {
	provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"same_department": false}`))
	}))
	provider.config.MaxRequestsPerMinute = 2

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := provider.DepartmentRelationship(ctx, "a", "b"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}

	_, err := provider.DepartmentRelationship(ctx, "a", "b")
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v (%T), want client-side RateLimitError", err, err)
	}
	if rateErr.RetryAfter <= 0 {
		t.Error("retry-after hint missing")
	}
}

func TestConnectionErrorAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.MaxRetries = 1
	config.RetryBackoff = time.Millisecond
	provider := NewHTTPProvider(config, nil)

	_, err := provider.DepartmentRelationship(context.Background(), "a", "b")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %v (%T), want ConnectionError", err, err)
	}
}

func TestTemporaryRoleActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name string
		role TemporaryRole
		want bool
	}{
		{"unbounded", TemporaryRole{}, true},
		{"inside window", TemporaryRole{StartDate: &before, EndDate: &after}, true},
		{"not yet started", TemporaryRole{StartDate: &after}, false},
		{"already ended", TemporaryRole{EndDate: &before}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.ActiveAt(now); got != tt.want {
				t.Errorf("ActiveAt = %v, want %v", got, tt.want)
			}
		})
	}
}
