package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/temporal"
)

// Decision is the composed-decision projection carried on an audit record.
type Decision struct {
	Action          string     `json:"action"`
	MatchedRuleID   string     `json:"matched_rule_id,omitempty"`
	Reasons         []string   `json:"reasons"`
	ConfidenceScore float64    `json:"confidence_score"`
	RiskLevel       string     `json:"risk_level"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	NextReview      time.Time  `json:"next_review"`
	AuditRequired   bool       `json:"audit_required,omitempty"`
}

// Record is one audited access decision.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// RecordedAt is when the record was created.
	RecordedAt time.Time `json:"recorded_at"`

	// Request identity.
	DataType              string `json:"data_type"`
	DataSubject           string `json:"data_subject"`
	DataSender            string `json:"data_sender"`
	DataRecipient         string `json:"data_recipient"`
	TransmissionPrinciple string `json:"transmission_principle"`

	// Temporal snapshot at evaluation time.
	Situation         string `json:"situation,omitempty"`
	TemporalRole      string `json:"temporal_role,omitempty"`
	EmergencyOverride bool   `json:"emergency_override,omitempty"`

	// Decision is the composed outcome.
	Decision Decision `json:"decision"`
}

// NewRecord builds an audit record for a request and its decision.
func NewRecord(request *temporal.Tuple, decision Decision) Record {
	rec := Record{
		ID:                    uuid.New().String(),
		RecordedAt:            time.Now().UTC(),
		DataType:              request.DataType,
		DataSubject:           request.DataSubject,
		DataSender:            request.DataSender,
		DataRecipient:         request.DataRecipient,
		TransmissionPrinciple: request.TransmissionPrinciple,
		Decision:              decision,
	}
	if tc := request.TemporalContext; tc != nil {
		rec.Situation = string(tc.Situation)
		rec.TemporalRole = tc.TemporalRole
		rec.EmergencyOverride = tc.EmergencyOverride
	}
	return rec
}

// Sink accepts decision records. Implementations must not block the
// caller beyond a short enqueue; failures are the implementation's to
// report, never the evaluation's.
type Sink interface {
	RecordDecision(ctx context.Context, rec Record) error
}

// Storage persists audit records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, rec *Record) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan removes records recorded before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the backend's resources.
	Close() error
}

// QueryFilter selects audit records.
type QueryFilter struct {
	// DataSubject filters by data subject when non-empty.
	DataSubject string

	// Action filters by decision action when non-empty.
	Action string

	// Since excludes records recorded before it when non-zero.
	Since time.Time

	// Limit caps the result size; zero means no cap.
	Limit int
}
