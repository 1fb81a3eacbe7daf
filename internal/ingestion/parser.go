package ingestion

import (
	"encoding/json"
	"fmt"

	"TxLedger/internal/amount"
	"TxLedger/internal/event"
)

// ParseRawEvent converts a RawEvent (JSON bytes + event type string) into a
// typed event.Event. The ingestion shell validates and converts raw payloads
// before anything reaches the processor.
func ParseRawEvent(raw RawEvent, eventType string) (event.Event, error) {
	switch eventType {
	case "Deposit":
		return parseDeposit(raw.Data)
	case "Withdrawal":
		return parseWithdrawal(raw.Data)
	case "Dispute":
		return parseReference(raw.Data, event.KindDispute)
	case "Resolve":
		return parseReference(raw.Data, event.KindResolve)
	case "Chargeback":
		return parseReference(raw.Data, event.KindChargeback)
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}

// --- JSON wire formats ---
// Amounts travel as decimal strings so producers in any language keep the
// same truncation semantics.

type movementJSON struct {
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount"`
}

func parseDeposit(data []byte) (*event.Deposit, error) {
	var j movementJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Deposit: %w", err)
	}
	units, err := amount.Parse(j.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse Deposit amount: %w", err)
	}
	return &event.Deposit{Client: j.Client, Tx: j.Tx, Amount: units}, nil
}

func parseWithdrawal(data []byte) (*event.Withdrawal, error) {
	var j movementJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Withdrawal: %w", err)
	}
	units, err := amount.Parse(j.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse Withdrawal amount: %w", err)
	}
	return &event.Withdrawal{Client: j.Client, Tx: j.Tx, Amount: units}, nil
}

type referenceJSON struct {
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
}

func parseReference(data []byte, kind event.Kind) (event.Event, error) {
	var j referenceJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse %s: %w", kind, err)
	}
	switch kind {
	case event.KindDispute:
		return &event.Dispute{Client: j.Client, Tx: j.Tx}, nil
	case event.KindResolve:
		return &event.Resolve{Client: j.Client, Tx: j.Tx}, nil
	case event.KindChargeback:
		return &event.Chargeback{Client: j.Client, Tx: j.Tx}, nil
	default:
		return nil, fmt.Errorf("not a reference event: %s", kind)
	}
}
