// Package ledger implements the per-client account state machine. An Account
// tracks available and held funds in minor units, the history of settled
// transactions, and the set of transactions currently under dispute. Accounts
// are not safe for concurrent use; the processor owns them from a single
// goroutine.
package ledger

// Account is the ledger state for one client.
type Account struct {
	available int64
	held      int64
	locked    bool
	history   TransactionStore
	disputed  map[uint32]struct{}
}

// NewAccount returns an empty, unlocked account backed by store.
func NewAccount(store TransactionStore) *Account {
	return &Account{
		history:  store,
		disputed: make(map[uint32]struct{}),
	}
}

// Available reports the funds free for withdrawal.
func (a *Account) Available() int64 { return a.available }

// Held reports the funds frozen by open disputes.
func (a *Account) Held() int64 { return a.held }

// Total reports available plus held funds.
func (a *Account) Total() int64 { return a.available + a.held }

// Locked reports whether a chargeback has frozen the account. Locked is
// terminal; every subsequent operation fails with ErrLocked.
func (a *Account) Locked() bool { return a.locked }

// Deposit credits amount to the available balance and records tx.
func (a *Account) Deposit(tx uint32, amount int64) error {
	if a.locked {
		return ErrLocked
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	if _, ok := a.history.Get(tx); ok {
		return ErrTxAlreadyExists
	}
	a.history.Put(tx, amount)
	a.available += amount
	return nil
}

// Withdraw debits amount from the available balance and records tx with a
// negative sign.
func (a *Account) Withdraw(tx uint32, amount int64) error {
	if a.locked {
		return ErrLocked
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	if a.available < amount {
		return ErrInsufficientFunds
	}
	if _, ok := a.history.Get(tx); ok {
		return ErrTxAlreadyExists
	}
	a.history.Put(tx, -amount)
	a.available -= amount
	return nil
}

// Dispute moves the signed amount of tx from available to held. A disputed
// withdrawal therefore raises available and lowers held by the same magnitude.
func (a *Account) Dispute(tx uint32) error {
	if a.locked {
		return ErrLocked
	}
	amount, ok := a.history.Get(tx)
	if !ok {
		return ErrTxUnknown
	}
	if _, open := a.disputed[tx]; open {
		return ErrTxAlreadyDisputed
	}
	a.disputed[tx] = struct{}{}
	a.available -= amount
	a.held += amount
	return nil
}

// Resolve closes the dispute on tx and returns the held amount to available.
func (a *Account) Resolve(tx uint32) error {
	if a.locked {
		return ErrLocked
	}
	amount, ok := a.history.Get(tx)
	if !ok {
		return ErrTxUnknown
	}
	if _, open := a.disputed[tx]; !open {
		return ErrTxUndisputed
	}
	delete(a.disputed, tx)
	a.available += amount
	a.held -= amount
	return nil
}

// Chargeback reverses the disputed tx, dropping the held amount, and locks
// the account permanently.
func (a *Account) Chargeback(tx uint32) error {
	if a.locked {
		return ErrLocked
	}
	amount, ok := a.history.Get(tx)
	if !ok {
		return ErrTxUnknown
	}
	if _, open := a.disputed[tx]; !open {
		return ErrTxUndisputed
	}
	delete(a.disputed, tx)
	a.held -= amount
	a.locked = true
	return nil
}
