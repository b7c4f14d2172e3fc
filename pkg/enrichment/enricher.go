package enrichment

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/orggraph"
	"mercator-hq/saturn/pkg/temporal"
)

// queryCount is the fixed fan-out of one enrichment call.
const queryCount = 4

// Config contains configuration for the enricher.
type Config struct {
	// QueryTimeout bounds each of the four relationship queries
	// individually, so one slow dependency cannot stall the others.
	// Default: 10s
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// Enricher builds temporal contexts from organizational-relationship facts,
// consulting and populating the cache and recording outcomes on the failure
// tracker.
type Enricher struct {
	provider orggraph.Provider
	cache    *ContextCache
	tracker  *FailureTracker
	logger   *slog.Logger
	config   Config
}

// NewEnricher creates an enricher. Cache and tracker are required; they are
// injected so tests and multiple deployments can run isolated instances.
func NewEnricher(provider orggraph.Provider, cache *ContextCache, tracker *FailureTracker, config Config, logger *slog.Logger) *Enricher {
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default().With("component", "enrichment.enricher")
	}
	return &Enricher{
		provider: provider,
		cache:    cache,
		tracker:  tracker,
		logger:   logger,
		config:   config,
	}
}

// queryResults collects the outcome of the four concurrent queries.
type queryResults struct {
	reporting  *orggraph.ReportingFact
	department *orggraph.DepartmentFact
	projects   *orggraph.ProjectsFact
	roles      *orggraph.RolesFact

	errs [queryCount]error
}

// Enrich builds a temporal context for (sender, recipient) at timestamp.
// A zero timestamp means now.
//
// The call never returns an error: provider failures are recorded on the
// tracker and degrade to "relationship unknown", and a total outage yields
// the minimal fallback context. The caller-supplied context bounds the
// whole call; outstanding sub-queries are abandoned at its deadline and the
// call returns whatever subset succeeded.
func (e *Enricher) Enrich(ctx context.Context, sender, recipient, dataType string, timestamp time.Time) *temporal.TemporalContext {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	if cached := e.cache.Get(sender, recipient); cached != nil {
		e.tracker.RecordSuccess()
		e.logger.Debug("using cached context",
			"sender", sender,
			"recipient", recipient,
		)
		return cached
	}

	results := e.runQueries(ctx, sender, recipient, timestamp)

	failed := 0
	for i, err := range results.errs {
		if err != nil {
			failed++
			e.tracker.RecordFailure(err.Error())
			e.logger.Warn("relationship query failed",
				"query", queryName(i),
				"sender", sender,
				"recipient", recipient,
				"error", err,
			)
		}
	}

	if failed == queryCount {
		// Total outage. Return safe defaults and skip caching so the
		// outage cannot poison the cache.
		e.logger.Error("all relationship queries failed, using minimal fallback context",
			"sender", sender,
			"recipient", recipient,
		)
		return minimalFallbackContext(timestamp)
	}

	e.tracker.RecordSuccess()

	tc := e.deriveContext(sender, timestamp, results)
	e.cache.Set(sender, recipient, tc)

	e.logger.Info("built temporal context",
		"sender", sender,
		"recipient", recipient,
		"data_type", dataType,
		"temporal_role", tc.TemporalRole,
		"data_domain", tc.DataDomain,
	)
	return tc
}

// runQueries fans out the four relationship queries concurrently, each
// bounded by its own timeout derived from the caller's context.
func (e *Enricher) runQueries(ctx context.Context, sender, recipient string, timestamp time.Time) *queryResults {
	results := &queryResults{}

	var wg sync.WaitGroup
	wg.Add(queryCount)

	run := func(i int, query func(context.Context) error) {
		defer wg.Done()
		qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
		defer cancel()
		results.errs[i] = query(qctx)
	}

	go run(0, func(qctx context.Context) error {
		fact, err := e.provider.ReportingRelationship(qctx, sender, recipient)
		if err != nil {
			return err
		}
		results.reporting = fact
		return nil
	})
	go run(1, func(qctx context.Context) error {
		fact, err := e.provider.DepartmentRelationship(qctx, sender, recipient)
		if err != nil {
			return err
		}
		results.department = fact
		return nil
	})
	go run(2, func(qctx context.Context) error {
		fact, err := e.provider.SharedProjects(qctx, sender, recipient)
		if err != nil {
			return err
		}
		results.projects = fact
		return nil
	})
	go run(3, func(qctx context.Context) error {
		fact, err := e.provider.TemporalRoles(qctx, sender, timestamp)
		if err != nil {
			return err
		}
		results.roles = fact
		return nil
	})

	wg.Wait()
	return results
}

// deriveContext maps the successful query results onto context fields.
func (e *Enricher) deriveContext(sender string, timestamp time.Time, results *queryResults) *temporal.TemporalContext {
	tc := &temporal.TemporalContext{
		Timestamp:    timestamp,
		Timezone:     "UTC",
		Situation:    temporal.SituationNormal,
		TemporalRole: "user",
	}

	if results.reporting != nil && results.reporting.IsDirectReport {
		tc.TemporalRole = "manager"
	}

	if results.department != nil && results.department.SameDepartment {
		tc.DataDomain = departmentTag(sender, results.department.Department)
	}

	if results.projects != nil && len(results.projects.ProjectIDs) > 0 {
		tc.EventCorrelation = "proj_" + results.projects.ProjectIDs[0]
	}

	if results.roles != nil {
		// First active role wins; multiple active acting roles are not
		// merged.
		for _, role := range results.roles.Roles {
			if !role.ActiveAt(timestamp) {
				continue
			}
			tc.TemporalRole = "acting_" + normalizeRoleName(role.RoleName)
			if role.StartDate != nil || role.EndDate != nil {
				tc.AccessWindow = &temporal.TimeWindow{
					Start:       role.StartDate,
					End:         role.EndDate,
					WindowType:  "emergency",
					Description: "Acting role: " + role.RoleName,
				}
			}
			break
		}
	}

	return tc
}

// minimalFallbackContext is the safe default returned during a total
// provider outage: least privilege, marked for audit.
func minimalFallbackContext(timestamp time.Time) *temporal.TemporalContext {
	return &temporal.TemporalContext{
		Timestamp:    timestamp,
		Timezone:     "UTC",
		TemporalRole: "user",
		Situation:    temporal.SituationAudit,
		DataDomain:   "unknown",
	}
}

// departmentTag derives the data-domain tag for a shared department. When
// the provider names the department that name is used; otherwise the tag
// falls back to the sender's ID prefix.
func departmentTag(sender, department string) string {
	if department != "" {
		return "dept_" + normalizeRoleName(department)
	}
	if idx := strings.Index(sender, "-"); idx > 0 {
		return "dept_" + sender[:idx]
	}
	return "dept_" + sender
}

// normalizeRoleName lowercases a role or department name and replaces
// spaces with underscores.
func normalizeRoleName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// queryName names a query slot for logging.
func queryName(i int) string {
	switch i {
	case 0:
		return "reporting_relationship"
	case 1:
		return "department_relationship"
	case 2:
		return "shared_projects"
	case 3:
		return "temporal_roles"
	default:
		return "unknown"
	}
}
