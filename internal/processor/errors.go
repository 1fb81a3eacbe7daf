package processor

import (
	"errors"
	"fmt"

	"TxLedger/internal/event"
	"TxLedger/internal/ledger"
)

var (
	// ErrUnknownClient is returned when an event other than a deposit
	// references a client with no account.
	ErrUnknownClient = errors.New("unknown client")

	// ErrSnapshotReply is reported when a snapshot requester abandoned its
	// reply channel before the processor answered.
	ErrSnapshotReply = errors.New("snapshot reply channel abandoned")
)

// RouteError wraps a ledger or routing failure with the identity of the
// event that caused it. It unwraps to the underlying sentinel.
type RouteError struct {
	Client uint16
	Tx     uint32
	Kind   event.Kind
	Err    error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("%s client=%d tx=%d: %v", e.Kind, e.Client, e.Tx, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// Reason maps an error to a stable label used in metrics and persisted
// rejection rows.
func Reason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrLocked):
		return "locked"
	case errors.Is(err, ledger.ErrNegativeAmount):
		return "negative_amount"
	case errors.Is(err, ledger.ErrTxAlreadyExists):
		return "tx_already_exists"
	case errors.Is(err, ledger.ErrTxUnknown):
		return "tx_unknown"
	case errors.Is(err, ledger.ErrTxAlreadyDisputed):
		return "tx_already_disputed"
	case errors.Is(err, ledger.ErrTxUndisputed):
		return "tx_undisputed"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrUnknownClient):
		return "unknown_client"
	case errors.Is(err, ErrSnapshotReply):
		return "snapshot_reply"
	default:
		return "unknown"
	}
}
