package temporal

import (
	"errors"
	"fmt"
	"time"
)

// Situation classifies the operational situation a request is evaluated under.
type Situation string

const (
	// SituationNormal is routine operation.
	SituationNormal Situation = "NORMAL"

	// SituationEmergency indicates an active emergency or incident response.
	SituationEmergency Situation = "EMERGENCY"

	// SituationAudit marks a request for mandatory audit review. The
	// enricher uses this for fallback contexts built during a provider
	// outage.
	SituationAudit Situation = "AUDIT"

	// SituationIncident indicates an active but non-emergency incident.
	SituationIncident Situation = "INCIDENT"
)

// RiskLevel is the 4-level ordinal risk scale attached to decisions.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskOrdinal maps risk levels onto the ordinal scale 1..4.
var riskOrdinal = map[RiskLevel]int{
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// riskFromOrdinal is the inverse of riskOrdinal.
var riskFromOrdinal = [...]RiskLevel{RiskLow, RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Step shifts a risk level by delta steps on the ordinal scale, clamped to
// [low, critical].
func (r RiskLevel) Step(delta int) RiskLevel {
	v, ok := riskOrdinal[r]
	if !ok {
		v = riskOrdinal[RiskMedium]
	}
	v += delta
	if v < 1 {
		v = 1
	}
	if v > 4 {
		v = 4
	}
	return riskFromOrdinal[v]
}

// TimeWindow is a bounded or half-bounded time interval during which a role
// or grant is valid. A nil bound means unbounded on that side.
type TimeWindow struct {
	// Start is the inclusive lower bound, or nil for unbounded.
	Start *time.Time `yaml:"start,omitempty" json:"start,omitempty"`

	// End is the inclusive upper bound, or nil for unbounded.
	End *time.Time `yaml:"end,omitempty" json:"end,omitempty"`

	// WindowType describes the kind of window (e.g. "business_hours",
	// "emergency", "access_window").
	WindowType string `yaml:"window_type,omitempty" json:"window_type,omitempty"`

	// Description is an optional human-readable note.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Validate checks the window's ordering invariant: if both bounds are
// present, Start must not be after End.
func (w *TimeWindow) Validate() error {
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return fmt.Errorf("time window start %s is after end %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls within the window. An absent bound is
// unbounded on that side.
func (w *TimeWindow) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// ErrMissingEmergencyAuthorization is returned when a context declares an
// emergency override without carrying an authorization ID.
var ErrMissingEmergencyAuthorization = errors.New("emergency override requires a non-empty authorization id")

// TemporalContext is the temporal dimension of an access request: when the
// request happens, under what situation, with what emergency state, role,
// and access window.
//
// The organizational side-channel fields (DataDomain, OrgContextUser,
// OrgContextSubject, SecurityClearance, InheritedPermissions) are derived by
// the enricher and the decision composer; they are explicit, always-present
// optional fields so every consumer shares one typed shape.
type TemporalContext struct {
	// Timestamp is the evaluation time for the request.
	Timestamp time.Time `json:"timestamp"`

	// Timezone is the IANA timezone name the request originates in.
	Timezone string `json:"timezone"`

	// BusinessHours indicates whether the request falls within the
	// sender's business hours. Produced upstream by the business-hours
	// collaborator.
	BusinessHours bool `json:"business_hours"`

	// EmergencyOverride is an explicitly authorized bypass of normal
	// temporal policy. If true, EmergencyAuthorizationID must be set.
	EmergencyOverride bool `json:"emergency_override"`

	// EmergencyAuthorizationID identifies the authorization backing an
	// emergency override.
	EmergencyAuthorizationID string `json:"emergency_authorization_id,omitempty"`

	// AccessWindow bounds the validity of the requester's current role or
	// grant, if any.
	AccessWindow *TimeWindow `json:"access_window,omitempty"`

	// DataFreshnessSeconds is the age of the data backing this context, if
	// known.
	DataFreshnessSeconds *int `json:"data_freshness_seconds,omitempty"`

	// Situation classifies the operational situation.
	Situation Situation `json:"situation,omitempty"`

	// TemporalRole is the requester's time-bounded role (e.g. "manager",
	// "acting_supervisor", "oncall_critical").
	TemporalRole string `json:"temporal_role,omitempty"`

	// EventCorrelation links the context to a correlated event or shared
	// project (e.g. "proj_atlas").
	EventCorrelation string `json:"event_correlation,omitempty"`

	// InheritedPermissions are the permissions derived from the temporal
	// role during evaluation. Ordered, deduplicated, never retracted.
	InheritedPermissions []string `json:"inherited_permissions,omitempty"`

	// DataDomain is the derived department/domain tag, set when sender and
	// recipient share a department.
	DataDomain string `json:"data_domain,omitempty"`

	// OrgContextUser is the raw organizational context snapshot for the
	// acting user, when fetched.
	OrgContextUser map[string]any `json:"org_context_user,omitempty"`

	// OrgContextSubject is the raw organizational context snapshot for the
	// data subject, when fetched.
	OrgContextSubject map[string]any `json:"org_context_subject,omitempty"`

	// SecurityClearance is the requester's clearance level, when known.
	SecurityClearance string `json:"security_clearance,omitempty"`
}

// NewTemporalContext validates and returns a temporal context. It enforces
// the one hard construction invariant of the model: an emergency override
// must carry a non-empty authorization ID. It also validates the access
// window ordering if one is present.
func NewTemporalContext(tc TemporalContext) (*TemporalContext, error) {
	if tc.EmergencyOverride && tc.EmergencyAuthorizationID == "" {
		return nil, ErrMissingEmergencyAuthorization
	}
	if tc.AccessWindow != nil {
		if err := tc.AccessWindow.Validate(); err != nil {
			return nil, fmt.Errorf("invalid access window: %w", err)
		}
	}
	if tc.Timestamp.IsZero() {
		tc.Timestamp = time.Now().UTC()
	}
	if tc.Timezone == "" {
		tc.Timezone = "UTC"
	}
	if tc.Situation == "" {
		tc.Situation = SituationNormal
	}
	return &tc, nil
}

// Clone returns a deep copy of the context. The cache stores clones so that
// in-flight requests never mutate cached state.
func (tc *TemporalContext) Clone() *TemporalContext {
	if tc == nil {
		return nil
	}
	out := *tc
	if tc.AccessWindow != nil {
		w := *tc.AccessWindow
		out.AccessWindow = &w
	}
	if tc.DataFreshnessSeconds != nil {
		v := *tc.DataFreshnessSeconds
		out.DataFreshnessSeconds = &v
	}
	if tc.InheritedPermissions != nil {
		out.InheritedPermissions = append([]string(nil), tc.InheritedPermissions...)
	}
	if tc.OrgContextUser != nil {
		out.OrgContextUser = make(map[string]any, len(tc.OrgContextUser))
		for k, v := range tc.OrgContextUser {
			out.OrgContextUser[k] = v
		}
	}
	if tc.OrgContextSubject != nil {
		out.OrgContextSubject = make(map[string]any, len(tc.OrgContextSubject))
		for k, v := range tc.OrgContextSubject {
			out.OrgContextSubject[k] = v
		}
	}
	return &out
}

// GrantPermissions appends perms to the context's inherited permissions,
// deduplicating while preserving first-seen order.
func (tc *TemporalContext) GrantPermissions(perms []string) {
	seen := make(map[string]struct{}, len(tc.InheritedPermissions)+len(perms))
	for _, p := range tc.InheritedPermissions {
		seen[p] = struct{}{}
	}
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		tc.InheritedPermissions = append(tc.InheritedPermissions, p)
	}
}

// Tuple is the enhanced contextual-integrity tuple: the classical five
// dimensions plus the temporal context, constructed once per access request.
type Tuple struct {
	// DataType is the classification of the data being accessed
	// (e.g. "financial", "medical_record").
	DataType string `json:"data_type"`

	// DataSubject is the person or entity the data is about.
	DataSubject string `json:"data_subject"`

	// DataSender is the party transmitting the data.
	DataSender string `json:"data_sender"`

	// DataRecipient is the party receiving the data.
	DataRecipient string `json:"data_recipient"`

	// TransmissionPrinciple is the norm governing the flow
	// (e.g. "need_to_know", "consent").
	TransmissionPrinciple string `json:"transmission_principle"`

	// TemporalContext is the sixth dimension: the "when" of the request.
	TemporalContext *TemporalContext `json:"temporal_context"`

	// RiskLevel is an optional pre-assessed risk classification.
	RiskLevel RiskLevel `json:"risk_level,omitempty"`

	// ComplianceTags are optional regulatory tags (e.g. "gdpr", "hipaa").
	ComplianceTags []string `json:"compliance_tags,omitempty"`

	// AuditRequired forces audit recording regardless of decision outcome.
	AuditRequired bool `json:"audit_required,omitempty"`

	// DataClassification is an optional sensitivity label.
	DataClassification string `json:"data_classification,omitempty"`
}

// NewTuple validates and returns a tuple. The temporal context must already
// have passed construction (or is validated here if supplied inline).
func NewTuple(t Tuple) (*Tuple, error) {
	if t.TemporalContext == nil {
		return nil, errors.New("tuple requires a temporal context")
	}
	tc, err := NewTemporalContext(*t.TemporalContext)
	if err != nil {
		return nil, err
	}
	t.TemporalContext = tc
	return &t, nil
}
