package query

import (
	"time"

	"github.com/google/uuid"
)

// StatementResponse is one account row from ledger.statements. Amounts are
// decimal strings with four fractional digits.
type StatementResponse struct {
	Client    uint16    `json:"client"`
	Available string    `json:"available"`
	Held      string    `json:"held"`
	Total     string    `json:"total"`
	Locked    bool      `json:"locked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RejectionResponse is one audit row from ledger.rejections.
type RejectionResponse struct {
	ID         uuid.UUID `json:"id"`
	Client     uint16    `json:"client"`
	Tx         uint32    `json:"tx"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason"`
	Detail     string    `json:"detail"`
	ObservedAt time.Time `json:"observed_at"`
}
