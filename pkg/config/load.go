package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies SATURN_SECTION_FIELD environment overrides (e.g.
// SATURN_ORGGRAPH_BASE_URL). Environment variables take precedence over
// the file.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies SATURN_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Enrichment
	if d, ok := envDuration("SATURN_ENRICHMENT_CACHE_TTL"); ok {
		cfg.Enrichment.CacheTTL = d
	}
	if val := os.Getenv("SATURN_ENRICHMENT_SWEEP_SCHEDULE"); val != "" {
		cfg.Enrichment.SweepSchedule = val
	}
	if d, ok := envDuration("SATURN_ENRICHMENT_QUERY_TIMEOUT"); ok {
		cfg.Enrichment.QueryTimeout = d
	}
	if d, ok := envDuration("SATURN_ENRICHMENT_FAILURE_WINDOW"); ok {
		cfg.Enrichment.FailureWindow = d
	}
	if f, ok := envFloat("SATURN_ENRICHMENT_FAILURE_THRESHOLD_PCT"); ok {
		cfg.Enrichment.FailureThresholdPct = f
	}

	// OrgGraph
	if val := os.Getenv("SATURN_ORGGRAPH_BASE_URL"); val != "" {
		cfg.OrgGraph.BaseURL = val
	}
	if val := os.Getenv("SATURN_ORGGRAPH_AUTH_TOKEN"); val != "" {
		cfg.OrgGraph.AuthToken = val
	}
	if val := os.Getenv("SATURN_ORGGRAPH_SERVICE_IDENTITY"); val != "" {
		cfg.OrgGraph.ServiceIdentity = val
	}
	if d, ok := envDuration("SATURN_ORGGRAPH_TIMEOUT"); ok {
		cfg.OrgGraph.Timeout = d
	}
	if n, ok := envInt("SATURN_ORGGRAPH_MAX_RETRIES"); ok {
		cfg.OrgGraph.MaxRetries = n
	}
	if n, ok := envInt("SATURN_ORGGRAPH_MAX_REQUESTS_PER_MINUTE"); ok {
		cfg.OrgGraph.MaxRequestsPerMinute = n
	}

	// Policy
	if val := os.Getenv("SATURN_POLICY_RULES_FILE"); val != "" {
		cfg.Policy.RulesFile = val
	}
	if b, ok := envBool("SATURN_POLICY_WATCH_RULES"); ok {
		cfg.Policy.WatchRules = b
	}

	// Composer
	if val := os.Getenv("SATURN_COMPOSER_BYPASS_SERVICES"); val != "" {
		cfg.Composer.BypassServices = splitCSV(val)
	}
	if b, ok := envBool("SATURN_COMPOSER_WEEKEND_SUPPORT"); ok {
		cfg.Composer.WeekendSupport = b
	}
	if n, ok := envInt("SATURN_COMPOSER_STALE_AFTER_SECONDS"); ok {
		cfg.Composer.StaleAfterSeconds = n
	}

	// LegalHold
	if val := os.Getenv("SATURN_LEGALHOLD_DB_PATH"); val != "" {
		cfg.LegalHold.DBPath = val
	}

	// Audit
	if b, ok := envBool("SATURN_AUDIT_ENABLED"); ok {
		cfg.Audit.Enabled = b
	}
	if val := os.Getenv("SATURN_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}
	if val := os.Getenv("SATURN_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}

	// Telemetry
	if b, ok := envBool("SATURN_TELEMETRY_METRICS_ENABLED"); ok {
		cfg.Telemetry.MetricsEnabled = b
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_ADDRESS"); val != "" {
		cfg.Telemetry.MetricsAddress = val
	}

	// Logging
	if val := os.Getenv("SATURN_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SATURN_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

func envInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(name string) (float64, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envBool(name string) (bool, bool) {
	val := os.Getenv(name)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}

func splitCSV(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
