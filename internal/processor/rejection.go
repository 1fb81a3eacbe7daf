package processor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rejection is the audit record of one rejected event, suitable for
// publishing and persistence.
type Rejection struct {
	ID         uuid.UUID `json:"id"`
	Client     uint16    `json:"client"`
	Tx         uint32    `json:"tx"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason"`
	Detail     string    `json:"detail"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewRejection builds a Rejection from a processor error. Errors that are not
// RouteErrors (snapshot reply failures) produce a record with zero client and
// tx ids.
func NewRejection(err error) Rejection {
	r := Rejection{
		ID:         uuid.New(),
		Reason:     Reason(err),
		Detail:     err.Error(),
		ObservedAt: time.Now().UTC(),
	}
	var route *RouteError
	if errors.As(err, &route) {
		r.Client = route.Client
		r.Tx = route.Tx
		r.Kind = route.Kind.String()
	}
	return r
}
