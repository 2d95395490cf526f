package sessauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Audit event types emitted by the engine.
const (
	AuditLogin   = "login"
	AuditLogout  = "logout"
	AuditRefresh = "refresh"
)

// AuditEvent is the canonical audit record emitted on login, logout, and
// token refresh.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Loginname string            `json:"loginname,omitempty"`
	Role      string            `json:"role,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives emitted audit events. Emit must be safe for concurrent
// use; the dispatcher calls it from a single goroutine, but nothing stops a
// sink from being shared across engines.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// RedisSink appends JSON-encoded audit events to a Redis list, newest first,
// trimming the list to MaxLen entries. Failures are silent: audit delivery is
// best effort and must never block or fail an auth operation.
type RedisSink struct {
	client redis.UniversalClient
	key    string
	maxLen int64
}

// NewRedisSink creates a sink writing to the given list key. maxLen <= 0
// keeps the list unbounded.
func NewRedisSink(client redis.UniversalClient, key string, maxLen int64) *RedisSink {
	if key == "" {
		key = "sessauth:audit"
	}
	return &RedisSink{
		client: client,
		key:    key,
		maxLen: maxLen,
	}
}

func (s *RedisSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.client == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, s.key, data)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, 0, s.maxLen-1)
	}
	_, _ = pipe.Exec(ctx)
}
