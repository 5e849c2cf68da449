package broker

import (
	"context"
	"log/slog"
	"sync"
)

// StartImportConsumers starts one consumer per topic and returns a wait func that
// blocks until all of them stopped. Nothing is started without brokers.
func StartImportConsumers(
	ctx context.Context,
	handler ImportEventHandler,
	brokers []string,
	groupID string,
	topics []string,
	logger *slog.Logger,
) func() {
	var wg sync.WaitGroup
	if len(brokers) == 0 {
		return wg.Wait
	}
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		consumer := NewKafkaConsumer(brokers, groupID, topic, logger)
		wg.Add(1)
		go func(tp string) {
			defer wg.Done()
			if err := consumer.Consume(ctx, handler); err != nil && ctx.Err() == nil {
				consumer.logger.Warn("import consumer stopped", slog.String("topic", tp), slog.Any("error", err))
			}
		}(topic)
	}
	return wg.Wait
}

// PollerRefetcher is the part of the poller registry the consumers need.
type PollerRefetcher interface {
	Refetch(ctx context.Context, jobID string) (bool, error)
}

// RefetchHandler turns import events into immediate fetches of watched jobs.
func RefetchHandler(pollers PollerRefetcher, logger *slog.Logger) ImportEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, event ImportEvent) error {
		watched, err := pollers.Refetch(ctx, event.JobID)
		if !watched {
			logger.Debug("import event for unwatched job", slog.String("jobId", event.JobID))
		}
		return err
	}
}
