package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs outgoing mail instead of delivering it.
// It is selected when no Resend API key is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// SendBatch logs every email in reqs and reports synthetic message IDs.
// POST: len(results) == len(reqs)
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		now := time.Now()
		slog.Info("noop_email_send", "to", req.To, "subject", req.Subject, "reply_to", req.ReplyTo)
		results = append(results, SendResult{MessageID: fmt.Sprintf("noop-%d", now.UnixNano()), SentAt: now})
	}
	slog.Info("noop_email_batch", "count", len(reqs))
	return results, nil
}
