package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"TxLedger/internal/amount"
	"TxLedger/internal/event"
)

// CSVReader decodes transaction events from the columnar wire format:
//
//	type,       client, tx, amount
//	deposit,         1,  1, 1.5
//	dispute,         1,  1,
//
// Whitespace around any field is ignored. Dispute, resolve and chargeback
// rows carry no amount; a trailing empty column is accepted either way.
type CSVReader struct {
	r    *csv.Reader
	line int
}

// NewCSVReader wraps r. The first record is expected to be the header and is
// skipped by Next on first use.
func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &CSVReader{r: cr}
}

// Next returns the next event, or io.EOF when the input is exhausted.
// Malformed rows return an error identifying the row; the reader stays usable
// so a caller can skip bad rows and keep going.
func (c *CSVReader) Next() (event.Event, error) {
	for {
		record, err := c.r.Read()
		if err != nil {
			return nil, err
		}
		c.line++
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if c.line == 1 && strings.EqualFold(record[0], "type") {
			continue
		}
		evt, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", c.line, err)
		}
		return evt, nil
	}
}

func decodeRecord(record []string) (event.Event, error) {
	if len(record) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(record))
	}

	client64, err := strconv.ParseUint(record[1], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("client %q: %w", record[1], err)
	}
	tx64, err := strconv.ParseUint(record[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("tx %q: %w", record[2], err)
	}
	client := uint16(client64)
	tx := uint32(tx64)

	kind := strings.ToLower(record[0])
	switch kind {
	case "deposit", "withdrawal":
		if len(record) < 4 || record[3] == "" {
			return nil, fmt.Errorf("%s row missing amount", kind)
		}
		units, err := amount.Parse(record[3])
		if err != nil {
			return nil, err
		}
		if kind == "deposit" {
			return &event.Deposit{Client: client, Tx: tx, Amount: units}, nil
		}
		return &event.Withdrawal{Client: client, Tx: tx, Amount: units}, nil
	case "dispute":
		return &event.Dispute{Client: client, Tx: tx}, nil
	case "resolve":
		return &event.Resolve{Client: client, Tx: tx}, nil
	case "chargeback":
		return &event.Chargeback{Client: client, Tx: tx}, nil
	default:
		return nil, fmt.Errorf("unknown row type %q", record[0])
	}
}

// WriteSnapshotCSV renders account states in the columnar output format, one
// row per account with a fixed header.
func WriteSnapshotCSV(w io.Writer, states []event.AccountState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, s := range states {
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			amount.Format(s.Available),
			amount.Format(s.Held),
			amount.Format(s.Total),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
