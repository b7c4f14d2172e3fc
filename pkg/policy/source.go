package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source provides an ordered sequence of rules to the engine. Rules may
// come from a config file, a graph-backed store, or a static list (tests).
type Source interface {
	// Rules returns the current rule set in evaluation order.
	Rules(ctx context.Context) ([]Rule, error)
}

// StaticSource is a fixed, in-memory rule list.
type StaticSource struct {
	rules []Rule
}

// NewStaticSource creates a source over the given rules, preserving order.
func NewStaticSource(rules []Rule) *StaticSource {
	return &StaticSource{rules: rules}
}

// Rules implements Source.
func (s *StaticSource) Rules(ctx context.Context) ([]Rule, error) {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

// ruleFile is the on-disk YAML shape.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// FileSource loads rules from a YAML file. The loaded set is cached; call
// Reload (directly or through a FileWatcher) to pick up changes. Rules are
// ordered by priority, stable within equal priorities, so declaration
// order breaks ties.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	rules []Rule
}

// NewFileSource creates a file-backed source and performs the initial load.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default().With("component", "policy.source")
	}
	s := &FileSource{path: path, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rules implements Source, returning the cached rule set.
func (s *FileSource) Rules(ctx context.Context) ([]Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

// Reload re-reads and validates the rules file, atomically replacing the
// cached set. On error the previous set is kept.
func (s *FileSource) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read rules file %q: %w", s.path, err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse rules file %q: %w", s.path, err)
	}

	for i := range file.Rules {
		if err := file.Rules[i].Validate(); err != nil {
			return fmt.Errorf("rules file %q: %w", s.path, err)
		}
	}

	sort.SliceStable(file.Rules, func(i, j int) bool {
		return file.Rules[i].Priority < file.Rules[j].Priority
	})

	s.mu.Lock()
	s.rules = file.Rules
	s.mu.Unlock()

	s.logger.Info("rules loaded",
		"path", s.path,
		"rule_count", len(file.Rules),
	)
	return nil
}
