package config

import "fmt"

// Validate checks the configuration for inconsistencies that would only
// surface later at runtime.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q", cfg.Logging.Format)
	}

	if cfg.Enrichment.FailureThresholdPct < 0 || cfg.Enrichment.FailureThresholdPct > 100 {
		return fmt.Errorf("failure threshold must be within [0, 100], got %v", cfg.Enrichment.FailureThresholdPct)
	}

	if cfg.Policy.WatchRules && cfg.Policy.RulesFile == "" {
		return fmt.Errorf("watch_rules requires a rules_file")
	}

	if cfg.OrgGraph.BaseURL == "" && cfg.Policy.RulesFile == "" {
		return fmt.Errorf("neither an orggraph base_url nor a rules_file is configured; the engine would have no signal sources")
	}

	return nil
}
