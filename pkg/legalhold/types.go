package legalhold

import "context"

// Kind classifies what a hold applies to.
type Kind string

const (
	// KindDataSubject holds all data about a person or entity.
	KindDataSubject Kind = "data_subject"

	// KindService holds all flows involving a service.
	KindService Kind = "service"
)

// Lookup answers hold queries. Implementations must be safe for concurrent
// use; the composer queries on every evaluation.
type Lookup interface {
	// IsOnHold reports whether an active hold exists for the subject.
	IsOnHold(ctx context.Context, kind Kind, id string) (bool, error)
}
