package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"outreachDesk/internal/modules/leads/application/usecase"
)

const (
	TopicImportSnapshot = "imports.snapshot"
	TopicImportSettled  = "imports.settled"
	TopicImportError    = "imports.error"

	streamPingEvery   = 30 * time.Second
	streamReadTimeout = 60 * time.Second
	streamWriteWait   = 5 * time.Second
)

// StreamMessage is one frame sent to an import watcher.
type StreamMessage struct {
	Topic     string    `json:"topic"`
	JobID     string    `json:"jobId"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StreamCommand is a frame a watcher may send: {"action":"refetch"}.
type StreamCommand struct {
	Action string `json:"action"`
}

// StreamCommandHandler executes a watcher command.
type StreamCommandHandler func(ctx context.Context, action string) error

// ImportStreamClient pushes poller snapshots of one import job over a websocket.
type ImportStreamClient struct {
	conn      *websocket.Conn
	jobID     string
	send      chan []byte
	done      chan struct{}
	flush     chan struct{}
	closeOnce sync.Once
	flushOnce sync.Once
	commands  StreamCommandHandler
	logger    *slog.Logger
}

func NewImportStreamClient(conn *websocket.Conn, jobID string, buf int, commands StreamCommandHandler, logger *slog.Logger) *ImportStreamClient {
	if logger == nil {
		logger = slog.Default()
	}
	if buf <= 0 {
		buf = 8
	}
	return &ImportStreamClient{
		conn:     conn,
		jobID:    strings.TrimSpace(jobID),
		send:     make(chan []byte, buf),
		done:     make(chan struct{}),
		flush:    make(chan struct{}),
		commands: commands,
		logger:   logger.With(slog.String("jobId", strings.TrimSpace(jobID))),
	}
}

// Done is closed once the connection is gone.
func (c *ImportStreamClient) Done() <-chan struct{} {
	return c.done
}

// Close ends the stream. It is safe to call more than once.
func (c *ImportStreamClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Forward relays snapshots until the job settles, the updates channel closes or
// the connection drops. The settled frame is the last one written.
func (c *ImportStreamClient) Forward(updates <-chan usecase.Snapshot) {
	for {
		select {
		case <-c.done:
			return
		case snapshot, ok := <-updates:
			if !ok {
				c.closeAfterFlush()
				return
			}
			topic := TopicImportSnapshot
			settled := snapshot.State == usecase.PollerSettled && !snapshot.Loading
			if settled {
				topic = TopicImportSettled
			}
			if !c.Send(topic, snapshot) {
				return
			}
			if settled {
				c.closeAfterFlush()
				return
			}
		}
	}
}

// Send queues a frame. A watcher whose buffer is full is disconnected.
func (c *ImportStreamClient) Send(topic string, data any) bool {
	payload, err := json.Marshal(StreamMessage{Topic: topic, JobID: c.jobID, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		c.logger.Error("import stream marshal error", slog.Any("error", err))
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.logger.Warn("import stream send buffer full")
		c.Close()
		return false
	}
}

func (c *ImportStreamClient) closeAfterFlush() {
	c.flushOnce.Do(func() { close(c.flush) })
}

// WritePump writes queued frames and keeps the connection alive with pings.
// Once a flush is requested it drains the queue, sends a normal closure and closes the socket.
func (c *ImportStreamClient) WritePump() {
	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if !c.write(msg) {
				return
			}
		case <-c.flush:
			if !c.drain() {
				return
			}
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "import settled"),
				time.Now().Add(streamWriteWait))
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				c.logger.Warn("import stream ping error", slog.Any("error", err))
				return
			}
		}
	}
}

func (c *ImportStreamClient) drain() bool {
	for {
		select {
		case msg := <-c.send:
			if !c.write(msg) {
				return false
			}
		default:
			return true
		}
	}
}

func (c *ImportStreamClient) write(msg []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		c.logger.Warn("import stream write error", slog.Any("error", err))
		return false
	}
	return true
}

// ReadPump consumes watcher commands until the peer goes away.
func (c *ImportStreamClient) ReadPump(ctx context.Context) {
	defer c.Close()
	c.conn.SetReadLimit(1 << 12)
	_ = c.conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	for {
		var cmd StreamCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !isClosedDone(c.done) {
				c.logger.Debug("import stream read ended", slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

		action := strings.ToLower(strings.TrimSpace(cmd.Action))
		if action == "" || c.commands == nil {
			continue
		}
		if err := c.commands(ctx, action); err != nil {
			c.Send(TopicImportError, map[string]string{"action": action, "error": err.Error()})
		}
	}
}

func isClosedDone(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
