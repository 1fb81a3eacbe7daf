package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"TxLedger/internal/processor"
)

// ErrorPublisher publishes rejected events to NATS for downstream consumers
// such as fraud review tooling. Subjects follow the pattern
// tx.ledger.errors.{reason}.
type ErrorPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan processor.Rejection
}

func NewErrorPublisher(js jetstream.JetStream, inputChan <-chan processor.Rejection) *ErrorPublisher {
	return &ErrorPublisher{
		js:        js,
		inputChan: inputChan,
	}
}

// Run starts the publisher loop. It returns when the input channel closes or
// the context is cancelled.
func (ep *ErrorPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case r, ok := <-ep.inputChan:
			if !ok {
				return nil
			}

			if err := ep.publish(ctx, r); err != nil {
				log.Printf("WARN: error publish failed id=%s: %v", r.ID, err)
				// Non-fatal: the rejection is still persisted for audit
			}
		}
	}
}

func (ep *ErrorPublisher) publish(ctx context.Context, r processor.Rejection) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal rejection: %w", err)
	}

	subject := fmt.Sprintf("tx.ledger.errors.%s", r.Reason)
	_, err = ep.js.Publish(ctx, subject, data)
	return err
}

// EnsureErrorStream creates the rejection stream.
func EnsureErrorStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "TX_LEDGER_ERRORS",
		Subjects:  []string{"tx.ledger.errors.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create error stream: %w", err)
	}
	log.Println("INFO: ensured error stream TX_LEDGER_ERRORS")
	return nil
}
