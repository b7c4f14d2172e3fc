package orggraph

import (
	"context"
	"time"
)

// Provider supplies organizational-relationship facts to the enricher.
// All operations are idempotent reads. Implementations must return one of
// the typed errors in this package for classifiable failures.
type Provider interface {
	// ReportingRelationship reports whether employeeID directly reports to
	// managerID.
	ReportingRelationship(ctx context.Context, employeeID, managerID string) (*ReportingFact, error)

	// DepartmentRelationship reports whether senderID and recipientID are
	// in the same department.
	DepartmentRelationship(ctx context.Context, senderID, recipientID string) (*DepartmentFact, error)

	// SharedProjects returns the projects senderID and recipientID both
	// belong to, ordered by the provider.
	SharedProjects(ctx context.Context, senderID, recipientID string) (*ProjectsFact, error)

	// TemporalRoles returns the acting/temporary roles held by personID,
	// including roles valid as of asOf.
	TemporalRoles(ctx context.Context, personID string, asOf time.Time) (*RolesFact, error)
}

// ReportingFact is the answer to a reporting-relationship query.
type ReportingFact struct {
	// IsDirectReport indicates a direct employee->manager edge.
	IsDirectReport bool `json:"is_direct_report"`

	// RelationshipType is the provider's label for the edge, if any
	// (e.g. "direct", "dotted_line").
	RelationshipType string `json:"relationship_type,omitempty"`
}

// DepartmentFact is the answer to a department-relationship query.
type DepartmentFact struct {
	// SameDepartment indicates sender and recipient share a department.
	SameDepartment bool `json:"same_department"`

	// Department is the shared department name, when known.
	Department string `json:"department,omitempty"`
}

// ProjectsFact is the answer to a shared-projects query.
type ProjectsFact struct {
	// ProjectIDs are the shared project identifiers in provider order.
	ProjectIDs []string `json:"project_ids"`
}

// RolesFact is the answer to a temporal-roles query.
type RolesFact struct {
	// Roles are the person's temporary roles in provider order.
	Roles []TemporaryRole `json:"roles"`
}

// TemporaryRole is a time-bounded delegated role (e.g. covering for an
// absent manager) with its own validity interval.
type TemporaryRole struct {
	// RoleName is the role's display name (e.g. "Supervisor").
	RoleName string `json:"role_name"`

	// StartDate is the inclusive start of the role's validity, or nil for
	// unbounded.
	StartDate *time.Time `json:"start_date,omitempty"`

	// EndDate is the inclusive end of the role's validity, or nil for
	// unbounded.
	EndDate *time.Time `json:"end_date,omitempty"`
}

// ActiveAt reports whether the role's validity interval contains t.
func (r *TemporaryRole) ActiveAt(t time.Time) bool {
	if r.StartDate != nil && t.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && t.After(*r.EndDate) {
		return false
	}
	return true
}
