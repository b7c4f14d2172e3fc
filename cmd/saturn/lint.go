package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/policy"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rules files",
	Long: `Validate temporal rules files for syntax and structural errors.

The lint command parses rules files and checks:
  - YAML syntax
  - Rule structure (id, action, matchers)
  - Access window ordering (start <= end)

Examples:
  # Lint single file
  saturn lint --file rules.yaml

  # Lint directory
  saturn lint --dir rules/

  # JSON output for CI/CD
  saturn lint --file rules.yaml --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rules file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rules files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

type lintResult struct {
	File      string `json:"file"`
	RuleCount int    `json:"rule_count"`
	Error     string `json:"error,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list rules files: %w", err)
			}
			files = append(files, matches...)
		}
		sort.Strings(files)
	}
	if len(files) == 0 {
		return fmt.Errorf("no rules files found")
	}

	var (
		results []lintResult
		failed  bool
	)
	for _, file := range files {
		res := lintFile(file)
		if res.Error != "" {
			failed = true
		}
		results = append(results, res)
	}

	switch lintFlags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	default:
		for _, res := range results {
			if res.Error != "" {
				fmt.Printf("FAIL %s: %s\n", res.File, res.Error)
			} else {
				fmt.Printf("OK   %s (%d rules)\n", res.File, res.RuleCount)
			}
		}
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func lintFile(path string) lintResult {
	res := lintResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var file struct {
		Rules []policy.Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		res.Error = err.Error()
		return res
	}

	res.RuleCount = len(file.Rules)
	for i := range file.Rules {
		if err := file.Rules[i].Validate(); err != nil {
			res.Error = err.Error()
			return res
		}
	}
	return res
}
