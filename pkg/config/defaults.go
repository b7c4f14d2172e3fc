package config

import "time"

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Enrichment.CacheTTL <= 0 {
		cfg.Enrichment.CacheTTL = 120 * time.Second
	}
	if cfg.Enrichment.QueryTimeout <= 0 {
		cfg.Enrichment.QueryTimeout = 10 * time.Second
	}
	if cfg.Enrichment.FailureWindow <= 0 {
		cfg.Enrichment.FailureWindow = 300 * time.Second
	}
	if cfg.Enrichment.FailureThresholdPct <= 0 {
		cfg.Enrichment.FailureThresholdPct = 5.0
	}

	if cfg.OrgGraph.Timeout <= 0 {
		cfg.OrgGraph.Timeout = 10 * time.Second
	}
	if cfg.OrgGraph.MaxRetries <= 0 {
		cfg.OrgGraph.MaxRetries = 3
	}
	if cfg.OrgGraph.RetryBackoff <= 0 {
		cfg.OrgGraph.RetryBackoff = 1 * time.Second
	}
	if cfg.OrgGraph.MaxRequestsPerMinute <= 0 {
		cfg.OrgGraph.MaxRequestsPerMinute = 100
	}
	if cfg.OrgGraph.ServiceIdentity == "" {
		cfg.OrgGraph.ServiceIdentity = "saturn"
	}

	if cfg.Policy.DebounceInterval <= 0 {
		cfg.Policy.DebounceInterval = 100 * time.Millisecond
	}

	if cfg.Composer.StaleAfterSeconds <= 0 {
		cfg.Composer.StaleAfterSeconds = 3600
	}

	if cfg.Audit.AsyncBuffer <= 0 {
		cfg.Audit.AsyncBuffer = 1000
	}
	if cfg.Audit.WriteTimeout <= 0 {
		cfg.Audit.WriteTimeout = 5 * time.Second
	}
	if cfg.Audit.RetentionMaxAge <= 0 {
		cfg.Audit.RetentionMaxAge = 90 * 24 * time.Hour
	}

	if cfg.Telemetry.MetricsAddress == "" {
		cfg.Telemetry.MetricsAddress = ":9090"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
