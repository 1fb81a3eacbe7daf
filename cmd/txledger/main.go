// Command txledger replays a CSV of transaction events and prints the final
// account statements to stdout. Malformed rows and rejected events are logged
// to stderr and skipped; the replay itself always runs to completion.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"TxLedger/internal/event"
	"TxLedger/internal/ingestion"
	"TxLedger/internal/observability"
	"TxLedger/internal/processor"
)

const eventBuffer = 1024

func main() {
	logger := observability.NewLogger("txledger")

	input := os.Stdin
	if len(os.Args) > 1 && os.Args[1] != "-" {
		f, err := os.Open(os.Args[1])
		if err != nil {
			logger.Fatal().Err(err).Str("path", os.Args[1]).Msg("open input")
		}
		defer f.Close()
		input = f
	}

	if err := run(input, os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("replay failed")
	}
}

func run(r io.Reader, w io.Writer, logger zerolog.Logger) error {
	p, events, errs := processor.Start(eventBuffer, logger, nil)

	// Rejections are expected during replay; they are logged, not fatal.
	sinkDone := make(chan struct{})
	go func() {
		defer close(sinkDone)
		for err := range errs {
			logger.Warn().Str("reason", processor.Reason(err)).Err(err).Msg("event rejected")
		}
	}()

	reader := ingestion.NewCSVReader(r)
	for {
		evt, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn().Err(err).Msg("skipping malformed row")
			continue
		}
		events <- evt
	}

	req, reply := event.NewSnapshotRequest()
	events <- req
	close(events)

	states := <-reply
	<-p.Done()
	<-sinkDone

	if err := ingestion.WriteSnapshotCSV(w, states); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
