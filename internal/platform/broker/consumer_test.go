package broker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestDecodeImportEvent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		msg        kafka.Message
		wantID     string
		wantStatus string
		wantOK     bool
	}{
		{name: "camel", msg: kafka.Message{Value: []byte(`{"jobId":"job-1","status":"RUNNING"}`)}, wantID: "job-1", wantStatus: "running", wantOK: true},
		{name: "snake", msg: kafka.Message{Value: []byte(`{"job_id":"job-2"}`)}, wantID: "job-2", wantOK: true},
		{name: "nested data", msg: kafka.Message{Value: []byte(`{"data":{"id":"job-3","status":"completed"}}`)}, wantID: "job-3", wantStatus: "completed", wantOK: true},
		{name: "key fallback", msg: kafka.Message{Key: []byte("job-4"), Value: []byte(`{"status":"failed"}`)}, wantID: "job-4", wantStatus: "failed", wantOK: true},
		{name: "plain payload", msg: kafka.Message{Key: []byte(" job-5 "), Value: []byte("updated")}, wantID: "job-5", wantOK: true},
		{name: "no id", msg: kafka.Message{Value: []byte(`{"status":"running"}`)}, wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			event, ok := decodeImportEvent(tc.msg)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if event.JobID != tc.wantID || event.Status != tc.wantStatus {
				t.Fatalf("unexpected event: %+v", event)
			}
			if event.At.IsZero() {
				t.Fatalf("expected timestamp")
			}
		})
	}
}

type fakeReader struct {
	messages []kafka.Message
	closed   bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestKafkaConsumer_ConsumeDispatchesUntilCanceled(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{messages: []kafka.Message{
		{Topic: "leads.import.updated", Value: []byte(`{"jobId":"job-1"}`)},
		{Topic: "leads.import.updated", Value: []byte(`{}`)},
		{Topic: "leads.import.updated", Value: []byte(`{"jobId":"job-2"}`)},
	}}
	consumer := &KafkaConsumer{reader: reader, logger: slog.New(slog.NewTextHandler(io.Discard, nil)), backoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	err := consumer.Consume(ctx, func(_ context.Context, event ImportEvent) error {
		seen = append(seen, event.JobID)
		if len(seen) == 2 {
			cancel()
		}
		return errors.New("handler errors are logged only")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(seen) != 2 || seen[0] != "job-1" || seen[1] != "job-2" {
		t.Fatalf("unexpected dispatch order: %v", seen)
	}
	if !reader.closed {
		t.Fatalf("expected reader to be closed")
	}
}

type fakeRefetcher struct {
	watched map[string]bool
	calls   []string
}

func (f *fakeRefetcher) Refetch(_ context.Context, jobID string) (bool, error) {
	f.calls = append(f.calls, jobID)
	return f.watched[jobID], nil
}

func TestRefetchHandler(t *testing.T) {
	t.Parallel()

	pollers := &fakeRefetcher{watched: map[string]bool{"job-1": true}}
	handler := RefetchHandler(pollers, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, id := range []string{"job-1", "job-9"} {
		if err := handler(context.Background(), ImportEvent{JobID: id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(pollers.calls) != 2 {
		t.Fatalf("expected two refetch calls, got %v", pollers.calls)
	}
}

func TestStartImportConsumers_NoBrokers(t *testing.T) {
	t.Parallel()

	wait := StartImportConsumers(context.Background(), nil, nil, "group", []string{"topic"}, nil)
	wait()
}
