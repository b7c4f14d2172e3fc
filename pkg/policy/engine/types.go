package engine

import (
	"time"

	"mercator-hq/saturn/pkg/temporal"
)

// Decision is the outcome of one evaluation.
type Decision struct {
	// Action is the final decision action.
	Action string `json:"action"`

	// MatchedRuleID names the rule that determined the action, when the
	// decision came from the rule set.
	MatchedRuleID string `json:"matched_rule_id,omitempty"`

	// Reasons explain the decision in the order the composer appended them.
	Reasons []string `json:"reasons"`

	// ConfidenceScore is the composer's confidence in [0, 1].
	ConfidenceScore float64 `json:"confidence_score"`

	// RiskLevel classifies the residual risk of the decision.
	RiskLevel temporal.RiskLevel `json:"risk_level"`

	// ExpiresAt bounds the validity of an ALLOW, when applicable.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// NextReview is when the decision should be re-evaluated.
	NextReview time.Time `json:"next_review"`

	// AuditRequired marks the decision for mandatory audit review.
	AuditRequired bool `json:"audit_required,omitempty"`

	// OrgContext summarizes the organizational factors that adjusted the
	// decision, when organizational adjustment ran.
	OrgContext *OrgContextFactors `json:"org_context,omitempty"`
}

// OrgContextFactors records which organizational relationships influenced
// a decision and by how much.
type OrgContextFactors struct {
	HasManagerRelationship bool     `json:"has_manager_relationship"`
	SameDepartment         bool     `json:"same_department"`
	SharedProjects         []string `json:"shared_projects,omitempty"`
	HasActingRole          bool     `json:"has_acting_role"`

	// ConfidenceBoost is the total confidence added by the factors above.
	ConfidenceBoost float64 `json:"confidence_boost"`

	// RiskAdjustment is the accumulated signed risk weight; it is converted
	// to ordinal risk steps when applied.
	RiskAdjustment float64 `json:"risk_adjustment"`
}
