// Package processor owns the account map and applies events to it from a
// single goroutine. Producers send events on a bounded channel; a full
// channel blocks them, which is the system's only backpressure mechanism.
// Rejected events come back on a separate error channel so ingestion never
// stalls on a bad payload.
package processor

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"TxLedger/internal/event"
	"TxLedger/internal/ledger"
	"TxLedger/internal/observability"
)

// Processor routes events to accounts. All account state is confined to the
// goroutine running Run.
type Processor struct {
	events   <-chan event.Event
	errs     chan<- error
	accounts map[uint16]*ledger.Account
	logger   zerolog.Logger
	metrics  *observability.Metrics
	done     chan struct{}
}

// New builds a Processor consuming events and reporting rejections on errs.
// metrics may be nil when no registry is wired, as in the offline CLI.
func New(events <-chan event.Event, errs chan<- error, logger zerolog.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{
		events:   events,
		errs:     errs,
		accounts: make(map[uint16]*ledger.Account),
		logger:   logger.With().Str("component", "processor").Logger(),
		metrics:  metrics,
		done:     make(chan struct{}),
	}
}

// Start wires a Processor with freshly allocated channels and launches its
// goroutine. It returns the inbound event channel and the rejection stream.
// Closing the event channel stops the processor after it drains; the error
// channel closes once the last event is handled.
func Start(buffer int, logger zerolog.Logger, metrics *observability.Metrics) (*Processor, chan<- event.Event, <-chan error) {
	events := make(chan event.Event, buffer)
	errs := make(chan error, buffer)
	p := New(events, errs, logger, metrics)
	go p.Run()
	return p, events, errs
}

// Run consumes events until the inbound channel is closed and drained, then
// closes the error channel. It must be called exactly once.
func (p *Processor) Run() {
	defer close(p.done)
	defer close(p.errs)

	for evt := range p.events {
		p.handle(evt)
	}
	p.logger.Info().Int("accounts", len(p.accounts)).Msg("event channel closed, processor stopping")
}

// Done is closed after the final event has been handled and the error
// channel closed.
func (p *Processor) Done() <-chan struct{} { return p.done }

func (p *Processor) handle(evt event.Event) {
	start := time.Now()
	var err error

	switch e := evt.(type) {
	case *event.Deposit:
		err = p.apply(e.Client, e.Tx, event.KindDeposit, true, func(a *ledger.Account) error {
			return a.Deposit(e.Tx, e.Amount)
		})
	case *event.Withdrawal:
		err = p.apply(e.Client, e.Tx, event.KindWithdrawal, false, func(a *ledger.Account) error {
			return a.Withdraw(e.Tx, e.Amount)
		})
	case *event.Dispute:
		err = p.apply(e.Client, e.Tx, event.KindDispute, false, func(a *ledger.Account) error {
			return a.Dispute(e.Tx)
		})
	case *event.Resolve:
		err = p.apply(e.Client, e.Tx, event.KindResolve, false, func(a *ledger.Account) error {
			return a.Resolve(e.Tx)
		})
	case *event.Chargeback:
		err = p.apply(e.Client, e.Tx, event.KindChargeback, false, func(a *ledger.Account) error {
			return a.Chargeback(e.Tx)
		})
	case *event.Snapshot:
		err = p.snapshot(e)
	default:
		p.logger.Warn().Str("event_type", evt.Kind().String()).Msg("unhandled event type")
		return
	}

	if p.metrics != nil {
		p.metrics.EventDuration.WithLabelValues(evt.Kind().String()).Observe(time.Since(start).Seconds())
		if err == nil {
			p.metrics.EventsApplied.WithLabelValues(evt.Kind().String()).Inc()
		} else {
			p.metrics.EventsRejected.WithLabelValues(evt.Kind().String(), Reason(err)).Inc()
		}
	}
	if err != nil {
		p.errs <- err
	}
}

// apply looks up the client's account and runs fn against it. Only deposits
// create accounts; every other event for an unseen client is rejected.
func (p *Processor) apply(client uint16, tx uint32, kind event.Kind, create bool, fn func(*ledger.Account) error) error {
	acct, ok := p.accounts[client]
	if !ok {
		if !create {
			return &RouteError{Client: client, Tx: tx, Kind: kind, Err: ErrUnknownClient}
		}
		acct = ledger.NewAccount(ledger.NewMemoryStore())
		p.accounts[client] = acct
		if p.metrics != nil {
			p.metrics.Accounts.Set(float64(len(p.accounts)))
		}
	}

	wasLocked := acct.Locked()
	if err := fn(acct); err != nil {
		return &RouteError{Client: client, Tx: tx, Kind: kind, Err: err}
	}
	if p.metrics != nil && !wasLocked && acct.Locked() {
		p.metrics.LockedAccounts.Inc()
	}
	return nil
}

// snapshot reports every account sorted by client id. The reply channel is
// buffered; a requester that went away is reported, not waited for.
func (p *Processor) snapshot(req *event.Snapshot) error {
	start := time.Now()

	states := make([]event.AccountState, 0, len(p.accounts))
	for client, acct := range p.accounts {
		states = append(states, event.AccountState{
			Client:    client,
			Available: acct.Available(),
			Held:      acct.Held(),
			Total:     acct.Total(),
			Locked:    acct.Locked(),
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Client < states[j].Client })

	if p.metrics != nil {
		p.metrics.SnapshotRequests.Inc()
		p.metrics.SnapshotAccounts.Set(float64(len(states)))
		p.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	}

	select {
	case req.Reply <- states:
		return nil
	default:
		return ErrSnapshotReply
	}
}
