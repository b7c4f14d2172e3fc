package config

import "time"

// Config is the root saturn configuration.
type Config struct {
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	OrgGraph   OrgGraphConfig   `yaml:"orggraph"`
	Policy     PolicyConfig     `yaml:"policy"`
	Composer   ComposerConfig   `yaml:"composer"`
	LegalHold  LegalHoldConfig  `yaml:"legalhold"`
	Audit      AuditConfig      `yaml:"audit"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EnrichmentConfig configures the context enricher and its cache/tracker.
type EnrichmentConfig struct {
	// CacheTTL is how long a built context stays valid in the cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// SweepSchedule is a cron expression for periodic cache sweeps; empty
	// disables sweeping.
	SweepSchedule string `yaml:"sweep_schedule"`

	// QueryTimeout bounds each relationship query.
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// FailureWindow is the failure tracker's trailing window.
	FailureWindow time.Duration `yaml:"failure_window"`

	// FailureThresholdPct is the failure rate above which an alert fires.
	FailureThresholdPct float64 `yaml:"failure_threshold_pct"`
}

// OrgGraphConfig configures the organizational-relationship provider client.
type OrgGraphConfig struct {
	// BaseURL is the provider API endpoint.
	BaseURL string `yaml:"base_url"`

	// AuthToken is the bearer token for provider requests.
	AuthToken string `yaml:"auth_token"`

	// ServiceIdentity identifies this service to the provider.
	ServiceIdentity string `yaml:"service_identity"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries bounds retry attempts per query.
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the base backoff between retries.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxRequestsPerMinute is the client-side rate limit.
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`
}

// PolicyConfig configures the rule source.
type PolicyConfig struct {
	// RulesFile is the YAML rules file path.
	RulesFile string `yaml:"rules_file"`

	// WatchRules enables hot reload of the rules file.
	WatchRules bool `yaml:"watch_rules"`

	// DebounceInterval is the watcher's quiet period before reloading.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ComposerConfig configures the decision composer.
type ComposerConfig struct {
	// BypassServices may bypass rule evaluation during emergencies.
	BypassServices []string `yaml:"bypass_services"`

	// WeekendSupport permits weekend access.
	WeekendSupport bool `yaml:"weekend_support"`

	// StaleAfterSeconds is the data age beyond which freshness diagnostics
	// fire on a default deny.
	StaleAfterSeconds int `yaml:"stale_after_seconds"`
}

// LegalHoldConfig configures the hold store.
type LegalHoldConfig struct {
	// DBPath is the SQLite hold database path; empty selects the in-memory
	// store.
	DBPath string `yaml:"db_path"`
}

// AuditConfig configures audit recording and retention.
type AuditConfig struct {
	// Enabled enables audit recording.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite audit database path; empty selects the
	// in-memory backend.
	DBPath string `yaml:"db_path"`

	// AsyncBuffer is the recorder's channel capacity.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds one storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RetentionMaxAge is the maximum audit record age.
	RetentionMaxAge time.Duration `yaml:"retention_max_age"`

	// PruneSchedule is a cron expression for retention pruning; empty
	// disables scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig configures the metrics endpoint.
type TelemetryConfig struct {
	// MetricsEnabled enables the Prometheus metrics endpoint.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// MetricsAddress is the listen address for the metrics endpoint.
	MetricsAddress string `yaml:"metrics_address"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}
