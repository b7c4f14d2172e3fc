package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/temporal"
)

// Action is the outcome a rule declares.
type Action string

const (
	// ActionAllow permits the access.
	ActionAllow Action = "ALLOW"

	// ActionDeny refuses the access.
	ActionDeny Action = "DENY"

	// ActionBlock refuses the access; it is the default of the
	// lightweight first-match evaluator when no rule matches.
	ActionBlock Action = "BLOCK"

	// ActionAllowWithAudit permits the access but marks the decision for
	// mandatory audit review.
	ActionAllowWithAudit Action = "ALLOW_WITH_AUDIT"
)

// Matcher matches one tuple field. It is either the wildcard "*", a single
// exact string, or a list of acceptable strings. A nil *Matcher means the
// field is undeclared and always matches.
type Matcher struct {
	// Wildcard is set when the matcher is "*".
	Wildcard bool

	// Values are the acceptable values; one entry for an exact matcher.
	Values []string
}

// UnmarshalYAML accepts either a scalar ("*" or an exact string) or a
// sequence of strings.
func (m *Matcher) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "*" {
			m.Wildcard = true
			return nil
		}
		m.Values = []string{s}
		return nil
	case yaml.SequenceNode:
		return node.Decode(&m.Values)
	default:
		return fmt.Errorf("matcher must be a string or a list, got yaml kind %d", node.Kind)
	}
}

// MarshalYAML renders the matcher back to its scalar or sequence form.
func (m Matcher) MarshalYAML() (any, error) {
	if m.Wildcard {
		return "*", nil
	}
	if len(m.Values) == 1 {
		return m.Values[0], nil
	}
	return m.Values, nil
}

// Matches reports whether value satisfies the matcher. A nil matcher
// (undeclared field) always matches.
func (m *Matcher) Matches(value string) bool {
	if m == nil || m.Wildcard {
		return true
	}
	for _, v := range m.Values {
		if v == value {
			return true
		}
	}
	return false
}

// TupleMatchers are the rule's constraints on the classical tuple fields.
// Undeclared fields always match.
type TupleMatchers struct {
	DataType              *Matcher `yaml:"data_type,omitempty"`
	DataSender            *Matcher `yaml:"data_sender,omitempty"`
	DataRecipient         *Matcher `yaml:"data_recipient,omitempty"`
	TransmissionPrinciple *Matcher `yaml:"transmission_principle,omitempty"`
}

// TemporalConstraints are the rule's constraints on the temporal context.
// Each constraint is optional; a nil pointer means undeclared.
type TemporalConstraints struct {
	// Situation must equal the context's situation when declared.
	Situation *temporal.Situation `yaml:"situation,omitempty"`

	// RequireEmergencyOverride, when declared, must equal the context's
	// emergency-override flag.
	RequireEmergencyOverride *bool `yaml:"require_emergency_override,omitempty"`

	// AccessWindow, when declared, must contain the evaluation timestamp.
	AccessWindow *temporal.TimeWindow `yaml:"access_window,omitempty"`

	// TemporalRole, when declared, must match the context's temporal role.
	TemporalRole *Matcher `yaml:"temporal_role,omitempty"`

	// MaxDataFreshnessSeconds, when declared, is the maximum acceptable
	// age of the context's backing data. An unknown freshness passes.
	MaxDataFreshnessSeconds *int `yaml:"max_data_freshness_seconds,omitempty"`
}

// Count returns the number of declared temporal constraints.
func (tc *TemporalConstraints) Count() int {
	n := 0
	if tc.Situation != nil {
		n++
	}
	if tc.RequireEmergencyOverride != nil {
		n++
	}
	if tc.AccessWindow != nil {
		n++
	}
	if tc.TemporalRole != nil {
		n++
	}
	if tc.MaxDataFreshnessSeconds != nil {
		n++
	}
	return n
}

// Rule is one declarative policy rule. Rules are evaluated in declaration
// order; Priority is advisory ordering metadata from the rule source.
type Rule struct {
	// ID uniquely identifies the rule within its source.
	ID string `yaml:"id"`

	// Action is the outcome when the rule matches.
	Action Action `yaml:"action"`

	// Tuples constrains the classical tuple fields.
	Tuples TupleMatchers `yaml:"tuples"`

	// Temporal constrains the temporal context.
	Temporal TemporalConstraints `yaml:"temporal_context"`

	// Priority orders rules from the source; lower values sort first.
	Priority int `yaml:"priority,omitempty"`
}

// Validate checks structural validity of the rule.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule has no id")
	}
	switch r.Action {
	case ActionAllow, ActionDeny, ActionBlock, ActionAllowWithAudit:
	case "":
		return fmt.Errorf("rule %q has no action", r.ID)
	default:
		return fmt.Errorf("rule %q has unknown action %q", r.ID, r.Action)
	}
	if r.Temporal.AccessWindow != nil {
		if err := r.Temporal.AccessWindow.Validate(); err != nil {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
	}
	return nil
}
