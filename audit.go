package goGuard

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
)

// AuditOp names the operation that moved the session.
type AuditOp string

const (
	// AuditLogin is recorded for every Login attempt.
	AuditLogin AuditOp = "login"
	// AuditLogout is recorded for every Logout.
	AuditLogout AuditOp = "logout"
	// AuditRevalidate is recorded when a monitor tick changes the session.
	AuditRevalidate AuditOp = "revalidate"
)

// AuditEvent is one session transition. Role and UserID describe the
// session that was entered, or the one that was left when the transition
// ends unauthenticated.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Op        AuditOp        `json:"op"`
	Outcome   string         `json:"outcome"`
	From      session.Status `json:"from"`
	To        session.Status `json:"to"`
	Role      string         `json:"role,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Authenticated reports whether the transition ended in an authenticated
// session.
func (e AuditEvent) Authenticated() bool {
	return e.To == session.StatusAuthenticated
}

func newTransition(op AuditOp, outcome string, from, to session.Session, err error) AuditEvent {
	subject := to
	if !to.IsAuthenticated() {
		subject = from
	}
	e := AuditEvent{
		Op:      op,
		Outcome: outcome,
		From:    from.Status,
		To:      to.Status,
		Role:    subject.Role,
		UserID:  subject.UserID,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// AuditSink receives session transitions from the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// AuditSinkFunc adapts a function to [AuditSink].
type AuditSinkFunc func(ctx context.Context, event AuditEvent)

// Emit calls f.
func (f AuditSinkFunc) Emit(ctx context.Context, event AuditEvent) {
	if f != nil {
		f(ctx, event)
	}
}

// JSONWriterSink writes one JSON object per transition, newline delimited.
type JSONWriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONWriterSink returns a sink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

// Emit encodes event. Write errors are dropped.
func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.enc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}

// ZapSink logs transitions at info level, failures at warn.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a sink logging to logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

// Emit logs event.
func (s *ZapSink) Emit(_ context.Context, e AuditEvent) {
	fields := []zap.Field{
		zap.String("op", string(e.Op)),
		zap.String("outcome", e.Outcome),
		zap.Stringer("from", e.From),
		zap.Stringer("to", e.To),
		zap.String("role", e.Role),
		zap.String("user_id", e.UserID),
		zap.Time("at", e.Timestamp),
	}
	if e.Error != "" {
		s.logger.Warn("session transition", append(fields, zap.String("error", e.Error))...)
		return
	}
	s.logger.Info("session transition", fields...)
}
