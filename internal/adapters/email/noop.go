package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// noopHistory is how many recent messages a NoopSender keeps.
const noopHistory = 100

// NoopSender logs messages instead of delivering them. Used when no provider
// key is configured and in tests. Only the most recent messages are kept.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records and logs msg without delivering it.
// PRE: msg has a recipient
// POST: msg is the last element of Sent(); at most noopHistory messages are retained
func (s *NoopSender) Send(_ context.Context, msg Message) (string, error) {
	s.mu.Lock()
	if len(s.sent) == noopHistory {
		copy(s.sent, s.sent[1:])
		s.sent = s.sent[:noopHistory-1]
	}
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	slog.Info("notify_event", "event", "noop_send", "to", msg.To, "subject", msg.Subject)
	return fmt.Sprintf("noop-%d", time.Now().UnixNano()), nil
}

// Sent returns a copy of the retained messages, oldest first.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
