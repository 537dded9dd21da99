package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"khata/internal/amqp"
)

// Consumer is the broker side of the sync pipeline. Satisfied by
// *amqp.Client.
type Consumer interface {
	ConsumeInvoiceSync(ctx context.Context, handler func(context.Context, *amqp.InvoiceSyncMessage) error) error
	Close() error
}

// RunConsumer consumes sync messages until ctx is done. A failed dial
// or a dropped connection is retried after the given interval instead
// of exiting, so a broker restart does not take the worker down.
func RunConsumer(ctx context.Context, dial func() (Consumer, error), handler func(context.Context, *amqp.InvoiceSyncMessage) error, retry time.Duration) error {
	for {
		consumer, err := dial()
		if err != nil {
			slog.ErrorContext(ctx, "Failed to connect to AMQP, retrying",
				"error", err, "retry_in", retry)
		} else {
			err = consumer.ConsumeInvoiceSync(ctx, handler)
			consumer.Close()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.ErrorContext(ctx, "Consumer stopped, retrying",
				"error", err, "retry_in", retry)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}
