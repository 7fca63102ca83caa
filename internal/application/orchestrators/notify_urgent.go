package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	emailAdapter "futoconnect/internal/adapters/email"
	"futoconnect/internal/domain/announcement"
)

// DefaultNotifyTimeout bounds a single urgent-announcement broadcast.
const DefaultNotifyTimeout = 30 * time.Second

// ErrNoRecipients is returned when an urgent broadcast has nobody to send to.
var ErrNoRecipients = errors.New("no notification recipients configured")

// NotifyUrgentInput carries input for the urgent notification orchestrator.
type NotifyUrgentInput struct {
	Announcement announcement.Announcement
}

// NotifyUrgentDeps holds dependencies for NotifyUrgent.
type NotifyUrgentDeps struct {
	EmailSender emailAdapter.Sender
	FromAddress string
	ReplyTo     string // optional; e.g. the registry's desk
	Recipients  []string
}

// ExecuteNotifyUrgent emails an urgent announcement to every configured recipient,
// one message per recipient so addresses are not disclosed to each other.
// PRE: Announcement.IsUrgent; at least one recipient
// POST: One send request per recipient handed to the provider; returns the number accepted
func ExecuteNotifyUrgent(ctx context.Context, input NotifyUrgentInput, deps NotifyUrgentDeps) (int, error) {
	a := input.Announcement
	if !a.IsUrgent {
		return 0, nil
	}
	if len(deps.Recipients) == 0 {
		return 0, ErrNoRecipients
	}

	subject, html, err := emailAdapter.RenderUrgent(emailAdapter.UrgentMessage{
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Tag:         a.Tag,
	})
	if err != nil {
		return 0, err
	}

	tags := map[string]string{"kind": "urgent_announcement", "announcement_id": a.ID}
	if a.Category != "" {
		tags["category"] = a.Category
	}
	reqs := make([]emailAdapter.SendRequest, 0, len(deps.Recipients))
	for _, to := range deps.Recipients {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{to},
			From:    deps.FromAddress,
			Subject: subject,
			HTML:    html,
			ReplyTo: deps.ReplyTo,
			Tags:    tags,
		})
	}

	results, err := deps.EmailSender.SendBatch(ctx, reqs)
	if err != nil {
		return len(results), err
	}

	slog.Info("announcement_event", "event", "urgent_notified", "announcement_id", a.ID, "recipient_count", len(results))
	return len(results), nil
}

// UrgentDispatcher runs urgent broadcasts in the background so request handlers
// never wait on the email provider.
type UrgentDispatcher struct {
	deps    NotifyUrgentDeps
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewUrgentDispatcher creates a dispatcher. A non-positive timeout uses DefaultNotifyTimeout.
func NewUrgentDispatcher(deps NotifyUrgentDeps, timeout time.Duration) *UrgentDispatcher {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &UrgentDispatcher{deps: deps, timeout: timeout}
}

// Dispatch starts a detached broadcast for a. It returns immediately.
// Failures are logged, never returned.
func (d *UrgentDispatcher) Dispatch(a announcement.Announcement) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if _, err := ExecuteNotifyUrgent(ctx, NotifyUrgentInput{Announcement: a}, d.deps); err != nil {
			slog.Error("announcement_event", "event", "urgent_notify_failed", "announcement_id", a.ID, "error", err)
		}
	}()
}

// Wait blocks until all in-flight broadcasts finish or ctx is done.
func (d *UrgentDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
