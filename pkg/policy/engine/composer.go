package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/enrichment"
	"mercator-hq/saturn/pkg/legalhold"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/temporal"
)

// Metrics receives one observation per composed decision.
type Metrics interface {
	ObserveDecision(action string, risk string, elapsed time.Duration)
}

// ComposerConfig contains configuration for the decision composer.
type ComposerConfig struct {
	// BypassServices are service identities allowed to bypass rule
	// evaluation during emergencies.
	BypassServices []string `yaml:"bypass_services"`

	// WeekendSupport permits weekend access; when false, weekend requests
	// that fall through to the default deny carry a weekend reason.
	WeekendSupport bool `yaml:"weekend_support"`

	// StaleAfterSeconds is the data age beyond which freshness diagnostics
	// fire on a default deny. Default: 3600
	StaleAfterSeconds int `yaml:"stale_after_seconds"`
}

// DefaultComposerConfig returns the default composer configuration.
func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{
		StaleAfterSeconds: 3600,
	}
}

// Composer fuses legal holds, emergency overrides, service bypass, weighted
// rule matching, and organizational-context adjustment into one auditable
// decision. It always returns a decision: collaborator failures degrade
// inputs, they never abort the evaluation.
type Composer struct {
	source   policy.Source
	holds    legalhold.Lookup
	sink     audit.Sink
	enricher *enrichment.Enricher
	metrics  Metrics
	logger   *slog.Logger
	config   ComposerConfig
}

// NewComposer creates a decision composer. The rule source is required;
// holds, sink, enricher, and metrics are optional collaborators.
func NewComposer(source policy.Source, holds legalhold.Lookup, sink audit.Sink, config ComposerConfig, logger *slog.Logger) *Composer {
	if config.StaleAfterSeconds <= 0 {
		config.StaleAfterSeconds = 3600
	}
	if logger == nil {
		logger = slog.Default().With("component", "engine.composer")
	}
	return &Composer{
		source: source,
		holds:  holds,
		sink:   sink,
		logger: logger,
		config: config,
	}
}

// SetEnricher attaches the context enricher used by EvaluateEnriched.
func (c *Composer) SetEnricher(e *enrichment.Enricher) { c.enricher = e }

// SetMetrics attaches a decision metrics observer.
func (c *Composer) SetMetrics(m Metrics) { c.metrics = m }

// Evaluate composes a decision for the request. When rules is nil the
// composer's rule source supplies the active set; a source failure is
// non-fatal and evaluation proceeds with an empty set.
func (c *Composer) Evaluate(ctx context.Context, request *temporal.Tuple, rules []policy.Rule) *Decision {
	start := time.Now()
	tc := request.TemporalContext
	now := tc.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if rules == nil && c.source != nil {
		loaded, err := c.source.Rules(ctx)
		if err != nil {
			c.logger.Warn("rule source unavailable, evaluating with empty rule set", "error", err)
		} else {
			rules = loaded
		}
	}

	d := &Decision{
		Action:          string(policy.ActionDeny),
		Reasons:         []string{},
		ConfidenceScore: 0.0,
		RiskLevel:       temporal.RiskHigh,
	}

	switch {
	case c.checkLegalHold(ctx, request, d):
		// Terminal deny.

	case tc.EmergencyOverride:
		// Authorization id presence is guaranteed by context construction.
		granted := applyRolePermissions(tc)
		d.Action = string(policy.ActionAllow)
		d.Reasons = append(d.Reasons, "Emergency override active")
		expiry := now.Add(4 * time.Hour)
		d.ExpiresAt = &expiry
		d.ConfidenceScore = 0.9
		d.RiskLevel = temporal.RiskMedium
		if len(granted) > 0 {
			c.logger.Info("temporal role permissions granted",
				"role", tc.TemporalRole,
				"permissions", granted,
			)
		}

	case c.checkServiceBypass(request, now, d):
		// Terminal allow with shortened expiry.

	default:
		c.evaluateRules(request, rules, now, d)
	}

	c.finalize(ctx, request, now, d)

	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.ObserveDecision(d.Action, string(d.RiskLevel), elapsed)
	}
	c.logger.Info("decision composed",
		"action", d.Action,
		"matched_rule_id", d.MatchedRuleID,
		"confidence", d.ConfidenceScore,
		"risk_level", d.RiskLevel,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return d
}

// EvaluateEnriched builds the temporal context through the enricher, wraps
// it into a request tuple, and composes the decision. Timestamp zero means
// now.
func (c *Composer) EvaluateEnriched(ctx context.Context, senderID, recipientID, subjectID, dataType, transmissionPrinciple string, timestamp time.Time) (*Decision, error) {
	if c.enricher == nil {
		return nil, fmt.Errorf("no enricher configured")
	}

	tc := c.enricher.Enrich(ctx, senderID, recipientID, dataType, timestamp)
	request, err := temporal.NewTuple(temporal.Tuple{
		DataType:              dataType,
		DataSubject:           subjectID,
		DataSender:            senderID,
		DataRecipient:         recipientID,
		TransmissionPrinciple: transmissionPrinciple,
		TemporalContext:       tc,
	})
	if err != nil {
		return nil, err
	}

	return c.Evaluate(ctx, request, nil), nil
}

// checkLegalHold applies the highest-priority deny: an active hold on the
// data subject or on either service involved. Lookup failures are logged
// and skipped so a hold-store outage cannot block all evaluation.
func (c *Composer) checkLegalHold(ctx context.Context, request *temporal.Tuple, d *Decision) bool {
	if c.holds == nil {
		return false
	}

	if request.DataSubject != "" {
		held, err := c.holds.IsOnHold(ctx, legalhold.KindDataSubject, request.DataSubject)
		if err != nil {
			c.logger.Warn("legal hold lookup failed", "kind", legalhold.KindDataSubject, "id", request.DataSubject, "error", err)
		} else if held {
			d.Action = string(policy.ActionDeny)
			d.Reasons = append(d.Reasons, "Legal hold active for data subject")
			d.AuditRequired = true
			return true
		}
	}

	for _, svc := range []string{request.DataSender, request.DataRecipient} {
		if svc == "" {
			continue
		}
		held, err := c.holds.IsOnHold(ctx, legalhold.KindService, svc)
		if err != nil {
			c.logger.Warn("legal hold lookup failed", "kind", legalhold.KindService, "id", svc, "error", err)
			continue
		}
		if held {
			d.Action = string(policy.ActionDeny)
			d.Reasons = append(d.Reasons, "Legal hold active for service")
			d.AuditRequired = true
			return true
		}
	}
	return false
}

// checkServiceBypass applies the configured emergency-bypass shortcut: a
// listed sender or recipient service, or a critical-role requester while an
// emergency situation is flagged.
func (c *Composer) checkServiceBypass(request *temporal.Tuple, now time.Time, d *Decision) bool {
	for _, svc := range []string{request.DataSender, request.DataRecipient} {
		if svc == "" || !c.isBypassService(svc) {
			continue
		}
		d.Action = string(policy.ActionAllow)
		d.Reasons = append(d.Reasons, fmt.Sprintf("Service %s has emergency bypass authorization", svc))
		expiry := now.Add(2 * time.Hour)
		d.ExpiresAt = &expiry
		d.ConfidenceScore = 0.8
		d.RiskLevel = temporal.RiskLow
		return true
	}

	tc := request.TemporalContext
	if tc.Situation == temporal.SituationEmergency && strings.Contains(tc.TemporalRole, "critical") {
		d.Action = string(policy.ActionAllow)
		d.Reasons = append(d.Reasons, "Critical service during active incident")
		expiry := now.Add(1 * time.Hour)
		d.ExpiresAt = &expiry
		d.ConfidenceScore = 0.8
		d.RiskLevel = temporal.RiskLow
		return true
	}
	return false
}

func (c *Composer) isBypassService(svc string) bool {
	for _, b := range c.config.BypassServices {
		if b == svc {
			return true
		}
	}
	return false
}

// evaluateRules runs the weighted scorer and applies the best match, or
// the default deny with its diagnostic reasons.
func (c *Composer) evaluateRules(request *temporal.Tuple, rules []policy.Rule, now time.Time, d *Decision) {
	best, score := bestMatch(request, rules)
	if best == nil {
		c.appendDenyDiagnostics(request, now, d)
		return
	}

	d.Action = string(best.Action)
	d.MatchedRuleID = best.ID
	d.Reasons = append(d.Reasons, fmt.Sprintf("Matched policy: %s", best.ID))
	d.ConfidenceScore = score
	d.RiskLevel = calculateRiskLevel(request, best)

	if best.Temporal.AccessWindow != nil && best.Temporal.AccessWindow.End != nil {
		end := *best.Temporal.AccessWindow.End
		d.ExpiresAt = &end
	} else {
		expiry := now.Add(8 * time.Hour)
		d.ExpiresAt = &expiry
	}
}

// appendDenyDiagnostics explains a default deny: no matching rule plus
// whichever temporal conditions apply.
func (c *Composer) appendDenyDiagnostics(request *temporal.Tuple, now time.Time, d *Decision) {
	tc := request.TemporalContext
	d.Reasons = append(d.Reasons, "No matching temporal policy found")

	if !tc.BusinessHours {
		d.Reasons = append(d.Reasons, "Outside business hours")
	}
	if isWeekend(now) && !c.config.WeekendSupport {
		d.Reasons = append(d.Reasons, "Weekend access not permitted for this service")
	}
	if tc.DataFreshnessSeconds != nil && *tc.DataFreshnessSeconds > c.config.StaleAfterSeconds {
		d.Reasons = append(d.Reasons, "Data freshness requirements not met")
	}
}

// finalize applies the steps common to every path: next-review scheduling,
// organizational-context adjustment, the overriding acting-role expiry
// check, and unconditional audit recording.
func (c *Composer) finalize(ctx context.Context, request *temporal.Tuple, now time.Time, d *Decision) {
	d.NextReview = now.Add(1 * time.Hour)

	c.applyOrgContextFactors(request.TemporalContext, now, d)

	// An acting role cannot outlive its window, regardless of what any
	// earlier step decided.
	tc := request.TemporalContext
	if tc.AccessWindow != nil && tc.AccessWindow.End != nil && tc.AccessWindow.End.Before(now) {
		d.Action = string(policy.ActionDeny)
		d.Reasons = append(d.Reasons, fmt.Sprintf("Acting role expired at %s", tc.AccessWindow.End.Format(time.RFC3339)))
		d.RiskLevel = temporal.RiskHigh
		d.ExpiresAt = nil
	}

	c.recordAudit(ctx, request, d)
}

// applyOrgContextFactors adjusts confidence and risk from the enriched
// organizational relationships and records the factor summary on the
// decision.
func (c *Composer) applyOrgContextFactors(tc *temporal.TemporalContext, now time.Time, d *Decision) {
	org := &OrgContextFactors{}

	if tc.TemporalRole == "manager" {
		org.HasManagerRelationship = true
		org.ConfidenceBoost += 0.15
		org.RiskAdjustment -= 0.2
		d.Reasons = append(d.Reasons, "Manager access to subordinate data (lower risk)")
	}

	if tc.DataDomain != "" && tc.DataDomain != "unknown" {
		org.SameDepartment = true
		org.ConfidenceBoost += 0.10
		org.RiskAdjustment -= 0.15
		d.Reasons = append(d.Reasons, fmt.Sprintf("Same department access: %s (lower risk)", tc.DataDomain))
	}

	if strings.HasPrefix(tc.EventCorrelation, "proj_") {
		projectID := strings.TrimPrefix(tc.EventCorrelation, "proj_")
		org.SharedProjects = append(org.SharedProjects, projectID)
		org.ConfidenceBoost += 0.08
		org.RiskAdjustment -= 0.10
		d.Reasons = append(d.Reasons, fmt.Sprintf("Shared project access: %s (lower risk)", projectID))
	}

	if strings.HasPrefix(tc.TemporalRole, "acting_") {
		org.HasActingRole = true
		if tc.AccessWindow != nil && (tc.AccessWindow.End == nil || !tc.AccessWindow.End.Before(now)) {
			if tc.AccessWindow.End != nil {
				end := *tc.AccessWindow.End
				d.ExpiresAt = &end
				d.Reasons = append(d.Reasons, fmt.Sprintf("Temporary acting role: %s expires %s", tc.TemporalRole, end.Format(time.RFC3339)))
			} else {
				d.Reasons = append(d.Reasons, fmt.Sprintf("Temporary acting role: %s expires never", tc.TemporalRole))
			}
			org.ConfidenceBoost += 0.12
		}
	}

	d.ConfidenceScore += org.ConfidenceBoost
	if d.ConfidenceScore > 1.0 {
		d.ConfidenceScore = 1.0
	}

	// The accumulated weight converts to whole ordinal steps, truncated
	// toward zero, then clamps to the scale's bounds.
	step := int(org.RiskAdjustment * 2)
	if step != 0 {
		d.RiskLevel = d.RiskLevel.Step(step)
	}

	d.OrgContext = org
}

// recordAudit forwards the decision to the audit sink. Sink failures are
// logged and discarded; they never alter the decision.
func (c *Composer) recordAudit(ctx context.Context, request *temporal.Tuple, d *Decision) {
	if c.sink == nil {
		return
	}
	rec := audit.NewRecord(request, auditView(d))
	if err := c.sink.RecordDecision(ctx, rec); err != nil {
		c.logger.Warn("audit record failed", "error", err)
	}
}

// auditView projects the decision onto the audit record shape.
func auditView(d *Decision) audit.Decision {
	return audit.Decision{
		Action:          d.Action,
		MatchedRuleID:   d.MatchedRuleID,
		Reasons:         d.Reasons,
		ConfidenceScore: d.ConfidenceScore,
		RiskLevel:       string(d.RiskLevel),
		ExpiresAt:       d.ExpiresAt,
		NextReview:      d.NextReview,
		AuditRequired:   d.AuditRequired,
	}
}
