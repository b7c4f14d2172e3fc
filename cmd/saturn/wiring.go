package main

import (
	"log/slog"
	"os"

	"mercator-hq/saturn/pkg/audit"
	auditstorage "mercator-hq/saturn/pkg/audit/storage"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/enrichment"
	"mercator-hq/saturn/pkg/legalhold"
	"mercator-hq/saturn/pkg/orggraph"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/policy/engine"
	"mercator-hq/saturn/pkg/telemetry/logging"
)

// runtime bundles the wired engine and everything that needs shutdown.
type runtime struct {
	cfg      *config.Config
	composer *engine.Composer
	cache    *enrichment.ContextCache
	tracker  *enrichment.FailureTracker
	enricher *enrichment.Enricher
	source   *policy.FileSource
	storage  audit.Storage
	recorder *audit.Recorder
	holds    legalhold.Lookup

	closers []func() error
}

// buildRuntime wires the engine from configuration. Optional collaborators
// are wired only when configured; the composer tolerates their absence.
func buildRuntime(cfg *config.Config) (*runtime, error) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if _, err := logging.Setup(cfg.Logging, os.Stdout); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}

	// Enrichment pipeline.
	rt.cache = enrichment.NewContextCache(cfg.Enrichment.CacheTTL, nil)
	rt.tracker = enrichment.NewFailureTracker(
		cfg.Enrichment.FailureWindow,
		cfg.Enrichment.FailureThresholdPct,
		nil, nil,
	)

	if cfg.OrgGraph.BaseURL != "" {
		provider := orggraph.NewHTTPProvider(orggraph.Config{
			BaseURL:              cfg.OrgGraph.BaseURL,
			AuthToken:            cfg.OrgGraph.AuthToken,
			ServiceIdentity:      cfg.OrgGraph.ServiceIdentity,
			Timeout:              cfg.OrgGraph.Timeout,
			MaxRetries:           cfg.OrgGraph.MaxRetries,
			RetryBackoff:         cfg.OrgGraph.RetryBackoff,
			MaxRequestsPerMinute: cfg.OrgGraph.MaxRequestsPerMinute,
		}, nil)
		rt.enricher = enrichment.NewEnricher(provider, rt.cache, rt.tracker,
			enrichment.Config{QueryTimeout: cfg.Enrichment.QueryTimeout}, nil)
	}

	// Rule source.
	var source policy.Source
	if cfg.Policy.RulesFile != "" {
		fs, err := policy.NewFileSource(cfg.Policy.RulesFile, nil)
		if err != nil {
			return nil, err
		}
		rt.source = fs
		source = fs
	} else {
		source = policy.NewStaticSource(nil)
	}

	// Legal holds.
	if cfg.LegalHold.DBPath != "" {
		store, err := legalhold.NewSQLiteStore(legalhold.SQLiteStoreConfig{DBPath: cfg.LegalHold.DBPath})
		if err != nil {
			return nil, err
		}
		rt.holds = store
		rt.closers = append(rt.closers, store.Close)
	} else {
		rt.holds = legalhold.NewMemoryStore()
	}

	// Audit.
	var sink audit.Sink
	if cfg.Audit.Enabled {
		if cfg.Audit.DBPath != "" {
			sqlCfg := auditstorage.DefaultSQLiteConfig()
			sqlCfg.Path = cfg.Audit.DBPath
			storage, err := auditstorage.NewSQLiteStorage(sqlCfg)
			if err != nil {
				return nil, err
			}
			rt.storage = storage
		} else {
			rt.storage = auditstorage.NewMemoryStorage()
		}
		rt.recorder = audit.NewRecorder(rt.storage, audit.RecorderConfig{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.AsyncBuffer,
			WriteTimeout: cfg.Audit.WriteTimeout,
		})
		sink = rt.recorder
		rt.closers = append(rt.closers, rt.storage.Close, rt.recorder.Close)
	}

	rt.composer = engine.NewComposer(source, rt.holds, sink, engine.ComposerConfig{
		BypassServices:    cfg.Composer.BypassServices,
		WeekendSupport:    cfg.Composer.WeekendSupport,
		StaleAfterSeconds: cfg.Composer.StaleAfterSeconds,
	}, nil)
	if rt.enricher != nil {
		rt.composer.SetEnricher(rt.enricher)
	}

	return rt, nil
}

// close shuts collaborators down in reverse wiring order.
func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			slog.Default().Warn("shutdown error", "error", err)
		}
	}
}
