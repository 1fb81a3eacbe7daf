package ledger

import "errors"

// Sentinel errors returned by account operations. Callers match them with
// errors.Is to classify rejected events.
var (
	// ErrLocked is returned for every operation on a locked account.
	ErrLocked = errors.New("account is locked")

	// ErrNegativeAmount is returned when a deposit or withdrawal carries a
	// negative amount.
	ErrNegativeAmount = errors.New("amount is negative")

	// ErrTxAlreadyExists is returned when a deposit or withdrawal reuses a
	// transaction id already recorded for the account.
	ErrTxAlreadyExists = errors.New("transaction id already recorded")

	// ErrTxUnknown is returned when a dispute, resolve or chargeback
	// references a transaction the account never recorded.
	ErrTxUnknown = errors.New("transaction id unknown")

	// ErrTxAlreadyDisputed is returned when a dispute targets a transaction
	// that is already under dispute.
	ErrTxAlreadyDisputed = errors.New("transaction already disputed")

	// ErrTxUndisputed is returned when a resolve or chargeback targets a
	// transaction that is not under dispute.
	ErrTxUndisputed = errors.New("transaction not disputed")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// account's available balance.
	ErrInsufficientFunds = errors.New("insufficient available funds")
)
