package processor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"TxLedger/internal/event"
	"TxLedger/internal/ledger"
)

func startTestProcessor(t *testing.T, buffer int) (*Processor, chan<- event.Event, <-chan error) {
	t.Helper()
	return Start(buffer, zerolog.Nop(), nil)
}

// drainErrors collects every rejection until the error channel closes.
func drainErrors(errs <-chan error) []error {
	var out []error
	for err := range errs {
		out = append(out, err)
	}
	return out
}

func takeSnapshot(t *testing.T, events chan<- event.Event) []event.AccountState {
	t.Helper()
	req, reply := event.NewSnapshotRequest()
	events <- req
	select {
	case states := <-reply:
		return states
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot reply timed out")
		return nil
	}
}

// ============================================================================
// Routing
// ============================================================================

func TestDepositCreatesAccount(t *testing.T) {
	_, events, errs := startTestProcessor(t, 16)

	events <- &event.Deposit{Client: 7, Tx: 1, Amount: 25_000}
	states := takeSnapshot(t, events)
	close(events)

	if len(states) != 1 {
		t.Fatalf("snapshot has %d accounts, want 1", len(states))
	}
	s := states[0]
	if s.Client != 7 || s.Available != 25_000 || s.Held != 0 || s.Total != 25_000 || s.Locked {
		t.Errorf("unexpected state: %+v", s)
	}
	if rejected := drainErrors(errs); len(rejected) != 0 {
		t.Errorf("unexpected rejections: %v", rejected)
	}
}

func TestNonDepositForUnknownClient(t *testing.T) {
	_, events, errs := startTestProcessor(t, 16)

	events <- &event.Withdrawal{Client: 1, Tx: 1, Amount: 1}
	events <- &event.Dispute{Client: 2, Tx: 2}
	events <- &event.Resolve{Client: 3, Tx: 3}
	events <- &event.Chargeback{Client: 4, Tx: 4}
	states := takeSnapshot(t, events)
	close(events)

	if len(states) != 0 {
		t.Errorf("rejected events created accounts: %+v", states)
	}
	rejected := drainErrors(errs)
	if len(rejected) != 4 {
		t.Fatalf("got %d rejections, want 4", len(rejected))
	}
	for _, err := range rejected {
		if !errors.Is(err, ErrUnknownClient) {
			t.Errorf("rejection = %v, want ErrUnknownClient", err)
		}
		var route *RouteError
		if !errors.As(err, &route) {
			t.Errorf("rejection %v is not a RouteError", err)
		}
	}
}

func TestRejectionCarriesEventIdentity(t *testing.T) {
	_, events, errs := startTestProcessor(t, 16)

	events <- &event.Deposit{Client: 9, Tx: 1, Amount: 10_000}
	events <- &event.Withdrawal{Client: 9, Tx: 2, Amount: 99_999}
	close(events)

	rejected := drainErrors(errs)
	if len(rejected) != 1 {
		t.Fatalf("got %d rejections, want 1", len(rejected))
	}
	var route *RouteError
	if !errors.As(rejected[0], &route) {
		t.Fatalf("rejection %v is not a RouteError", rejected[0])
	}
	if route.Client != 9 || route.Tx != 2 || route.Kind != event.KindWithdrawal {
		t.Errorf("RouteError identity = %+v", route)
	}
	if !errors.Is(rejected[0], ledger.ErrInsufficientFunds) {
		t.Errorf("rejection does not unwrap to ErrInsufficientFunds: %v", rejected[0])
	}
}

// ============================================================================
// Snapshots
// ============================================================================

func TestSnapshotSortedByClient(t *testing.T) {
	_, events, errs := startTestProcessor(t, 16)

	for _, client := range []uint16{42, 3, 17, 1} {
		events <- &event.Deposit{Client: client, Tx: uint32(client), Amount: 10_000}
	}
	states := takeSnapshot(t, events)
	close(events)
	drainErrors(errs)

	want := []uint16{1, 3, 17, 42}
	if len(states) != len(want) {
		t.Fatalf("snapshot has %d accounts, want %d", len(states), len(want))
	}
	for i, s := range states {
		if s.Client != want[i] {
			t.Errorf("states[%d].Client = %d, want %d", i, s.Client, want[i])
		}
	}
}

func TestSnapshotSeesAllPriorEvents(t *testing.T) {
	_, events, errs := startTestProcessor(t, 4)

	const n = 1000
	for i := uint32(1); i <= n; i++ {
		events <- &event.Deposit{Client: 1, Tx: i, Amount: 1}
	}
	states := takeSnapshot(t, events)
	close(events)
	drainErrors(errs)

	if len(states) != 1 || states[0].Available != n {
		t.Fatalf("snapshot = %+v, want single account with available %d", states, n)
	}
}

func TestAbandonedSnapshotReply(t *testing.T) {
	_, events, errs := startTestProcessor(t, 16)

	// A reply channel that is already full stands in for a requester that
	// stopped listening.
	reply := make(chan []event.AccountState, 1)
	reply <- nil
	events <- &event.Snapshot{Reply: reply}
	close(events)

	rejected := drainErrors(errs)
	if len(rejected) != 1 || !errors.Is(rejected[0], ErrSnapshotReply) {
		t.Fatalf("rejections = %v, want one ErrSnapshotReply", rejected)
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestCloseDrainsThenStops(t *testing.T) {
	p, events, errs := startTestProcessor(t, 64)

	for i := uint32(1); i <= 50; i++ {
		events <- &event.Deposit{Client: 1, Tx: i, Amount: 100}
	}
	close(events)

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("processor did not stop after channel close")
	}
	if rejected := drainErrors(errs); len(rejected) != 0 {
		t.Errorf("unexpected rejections: %v", rejected)
	}
}

func TestDisputeLifecycleThroughProcessor(t *testing.T) {
	_, events, errs := startTestProcessor(t, 16)

	events <- &event.Deposit{Client: 1, Tx: 1, Amount: 30_000}
	events <- &event.Deposit{Client: 1, Tx: 2, Amount: 20_000}
	events <- &event.Dispute{Client: 1, Tx: 2}
	events <- &event.Chargeback{Client: 1, Tx: 2}
	events <- &event.Deposit{Client: 1, Tx: 3, Amount: 10_000} // rejected, locked
	states := takeSnapshot(t, events)
	close(events)

	if len(states) != 1 {
		t.Fatalf("snapshot has %d accounts, want 1", len(states))
	}
	s := states[0]
	if s.Available != 30_000 || s.Held != 0 || s.Total != 30_000 || !s.Locked {
		t.Errorf("unexpected state after chargeback: %+v", s)
	}
	rejected := drainErrors(errs)
	if len(rejected) != 1 || !errors.Is(rejected[0], ledger.ErrLocked) {
		t.Errorf("rejections = %v, want one ErrLocked", rejected)
	}
}

// ============================================================================
// Rejection records
// ============================================================================

func TestNewRejectionFromRouteError(t *testing.T) {
	err := &RouteError{Client: 5, Tx: 77, Kind: event.KindDispute, Err: ledger.ErrTxUnknown}
	r := NewRejection(err)
	if r.Client != 5 || r.Tx != 77 || r.Kind != "Dispute" {
		t.Errorf("rejection identity = %+v", r)
	}
	if r.Reason != "tx_unknown" {
		t.Errorf("reason = %q, want tx_unknown", r.Reason)
	}
	if r.ID == uuid.Nil {
		t.Error("rejection id not populated")
	}
}

func TestReasonLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ledger.ErrLocked, "locked"},
		{ledger.ErrNegativeAmount, "negative_amount"},
		{ledger.ErrTxAlreadyExists, "tx_already_exists"},
		{ledger.ErrTxUnknown, "tx_unknown"},
		{ledger.ErrTxAlreadyDisputed, "tx_already_disputed"},
		{ledger.ErrTxUndisputed, "tx_undisputed"},
		{ledger.ErrInsufficientFunds, "insufficient_funds"},
		{ErrUnknownClient, "unknown_client"},
		{ErrSnapshotReply, "snapshot_reply"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		wrapped := &RouteError{Kind: event.KindDeposit, Err: tc.err}
		if got := Reason(wrapped); got != tc.want {
			t.Errorf("Reason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
