package event

// AccountState is a point-in-time view of a single client account as reported
// by a snapshot. Amounts are in minor units with 4 decimal digits.
type AccountState struct {
	Client    uint16
	Available int64
	Held      int64
	Total     int64
	Locked    bool
}

// Snapshot asks the processor for the state of every account it knows. The
// reply arrives on Reply as one slice sorted by client id ascending.
type Snapshot struct {
	Reply chan<- []AccountState
}

func (e *Snapshot) Kind() Kind { return KindSnapshot }

// NewSnapshotRequest builds a snapshot event together with the receiving end
// of its reply channel. The reply channel is buffered with capacity one so the
// processor never blocks on a requester that gave up waiting.
func NewSnapshotRequest() (*Snapshot, <-chan []AccountState) {
	reply := make(chan []AccountState, 1)
	return &Snapshot{Reply: reply}, reply
}
