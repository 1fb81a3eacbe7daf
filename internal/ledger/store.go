package ledger

// TransactionStore records the signed net amount of every deposit and
// withdrawal an account has processed, keyed by transaction id. Deposits are
// stored positive and withdrawals negative, so reversing a disputed
// transaction is the same arithmetic either way.
type TransactionStore interface {
	// Get returns the signed amount recorded under tx.
	Get(tx uint32) (int64, bool)
	// Put records amount under tx. Callers check Get first; Put overwrites.
	Put(tx uint32, amount int64)
}

// MemoryStore is the in-process TransactionStore used by the ledger.
type MemoryStore struct {
	amounts map[uint32]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{amounts: make(map[uint32]int64)}
}

func (s *MemoryStore) Get(tx uint32) (int64, bool) {
	amount, ok := s.amounts[tx]
	return amount, ok
}

func (s *MemoryStore) Put(tx uint32, amount int64) {
	s.amounts[tx] = amount
}

// Len reports how many transactions the store holds.
func (s *MemoryStore) Len() int { return len(s.amounts) }
