// Package config defines the saturn configuration model and its loading
// pipeline: YAML file, defaults, SATURN_* environment overrides, then
// validation. Environment variables always take precedence over the file.
package config
