package event

// Kind discriminates transaction event payloads.
type Kind int32

const (
	KindUnknown Kind = iota
	KindDeposit
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
	KindSnapshot
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdrawal:
		return "Withdrawal"
	case KindDispute:
		return "Dispute"
	case KindResolve:
		return "Resolve"
	case KindChargeback:
		return "Chargeback"
	case KindSnapshot:
		return "Snapshot"
	default:
		return "Unknown"
	}
}

// Event is the interface all inbound events implement. Events are routed by
// the processor's single consuming goroutine; they carry no reply path except
// for Snapshot.
type Event interface {
	// Kind returns the discriminator
	Kind() Kind
}

// Deposit credits a client's available funds. A deposit for a client never
// seen before creates the account.
type Deposit struct {
	Client uint16
	Tx     uint32
	Amount int64 // minor units, 4 decimal digits of precision
}

func (e *Deposit) Kind() Kind { return KindDeposit }

// Withdrawal debits a client's available funds.
type Withdrawal struct {
	Client uint16
	Tx     uint32
	Amount int64
}

func (e *Withdrawal) Kind() Kind { return KindWithdrawal }

// Dispute freezes the net amount of a previously recorded transaction.
type Dispute struct {
	Client uint16
	Tx     uint32
}

func (e *Dispute) Kind() Kind { return KindDispute }

// Resolve releases a dispute hold; the disputed transaction stands.
type Resolve struct {
	Client uint16
	Tx     uint32
}

func (e *Resolve) Kind() Kind { return KindResolve }

// Chargeback reverses a disputed transaction and locks the account.
type Chargeback struct {
	Client uint16
	Tx     uint32
}

func (e *Chargeback) Kind() Kind { return KindChargeback }
