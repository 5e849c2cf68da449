package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"outreachDesk/internal/shared/normalization"
)

// ImportEvent announces that the backend changed the state of an import job.
type ImportEvent struct {
	JobID  string
	Status string
	Topic  string
	At     time.Time
}

// ImportEventHandler reacts to one decoded import event.
type ImportEventHandler func(ctx context.Context, event ImportEvent) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer reads import events from a single topic.
type KafkaConsumer struct {
	reader  messageReader
	logger  *slog.Logger
	backoff time.Duration
}

func NewKafkaConsumer(brokers []string, groupID string, topic string, logger *slog.Logger) *KafkaConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
		logger:  logger,
		backoff: time.Second,
	}
}

// Consume blocks until ctx is done, passing every decodable event to handler.
// Messages without a job id are skipped.
func (c *KafkaConsumer) Consume(ctx context.Context, handler ImportEventHandler) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			c.logger.Warn("kafka read error", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}

		event, ok := decodeImportEvent(m)
		if !ok {
			c.logger.Debug("kafka message without job id skipped",
				slog.String("topic", m.Topic),
				slog.Int64("offset", m.Offset),
			)
			continue
		}
		c.logger.Info("import event consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("jobId", event.JobID),
			slog.String("status", event.Status),
		)
		if err := handler(ctx, event); err != nil {
			c.logger.Warn("import event handler error", slog.String("jobId", event.JobID), slog.Any("error", err))
		}
	}
}

var (
	jobIDKeys  = []string{"jobId", "job_id", "id"}
	statusKeys = []string{"status", "state"}
)

// decodeImportEvent accepts {jobId|job_id|id, status} either at the top level or
// inside a data envelope. The message key is the fallback job id.
func decodeImportEvent(m kafka.Message) (ImportEvent, bool) {
	event := ImportEvent{Topic: m.Topic, At: m.Time}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	key := strings.TrimSpace(string(m.Key))

	var payload any
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		event.JobID = key
		return event, event.JobID != ""
	}

	top := normalization.AsMap(payload)
	inner := normalization.MapFromPayload(payload)
	event.JobID = strings.TrimSpace(normalization.FirstNonEmpty(
		normalization.PickString(top, jobIDKeys, ""),
		normalization.PickString(inner, jobIDKeys, ""),
		key,
	))
	event.Status = strings.ToLower(strings.TrimSpace(normalization.FirstNonEmpty(
		normalization.PickString(top, statusKeys, ""),
		normalization.PickString(inner, statusKeys, ""),
	)))
	return event, event.JobID != ""
}
