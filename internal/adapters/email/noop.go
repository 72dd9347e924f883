package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// NoopSender logs instead of delivering. It keeps what it was given so
// development setups and tests can inspect outgoing mail.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records msg and returns a synthetic message ID.
func (s *NoopSender) Send(_ context.Context, msg Message) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	id := fmt.Sprintf("noop-%d", len(s.sent))
	s.mu.Unlock()
	slog.Info("email_sent", "provider", "noop", "message_id", id, "subject", msg.Subject, "recipients", len(msg.To))
	return id, nil
}

// Sent returns a copy of every message recorded so far.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
