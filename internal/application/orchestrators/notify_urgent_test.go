package orchestrators

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	emailAdapter "futoconnect/internal/adapters/email"
	"futoconnect/internal/domain/announcement"
)

// mockSender records SendBatch calls.
type mockSender struct {
	mu      sync.Mutex
	batches [][]emailAdapter.SendRequest
	err     error
	delay   time.Duration
}

func (m *mockSender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.batches = append(m.batches, reqs)
	results := make([]emailAdapter.SendResult, len(reqs))
	for i := range reqs {
		results[i] = emailAdapter.SendResult{MessageID: "msg", SentAt: time.Now()}
	}
	return results, nil
}

func (m *mockSender) sent() [][]emailAdapter.SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

var urgentGST = announcement.Announcement{
	ID:          "gst",
	Title:       "Rescheduling of GST 101 Exams",
	Description: "Moved to **Friday**",
	Category:    "Urgent",
	Tag:         "EXAMS",
	IsUrgent:    true,
}

func TestExecuteNotifyUrgent_OnePerRecipient(t *testing.T) {
	sender := &mockSender{}
	n, err := ExecuteNotifyUrgent(context.Background(), NotifyUrgentInput{Announcement: urgentGST}, NotifyUrgentDeps{
		EmailSender: sender,
		FromAddress: "FUTO Connect <noreply@futo.edu.ng>",
		ReplyTo:     "registry@futo.edu.ng",
		Recipients:  []string{"a@futo.edu.ng", "b@futo.edu.ng"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 sent, got %d", n)
	}
	batches := sender.sent()
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("expected one batch of 2, got %v", batches)
	}
	for _, req := range batches[0] {
		if len(req.To) != 1 {
			t.Errorf("expected single recipient per email, got %v", req.To)
		}
		if !strings.HasPrefix(req.Subject, "[URGENT]") {
			t.Errorf("subject = %q", req.Subject)
		}
		if !strings.Contains(req.HTML, "<strong>Friday</strong>") {
			t.Errorf("expected markdown rendered, got %s", req.HTML)
		}
		if req.ReplyTo != "registry@futo.edu.ng" {
			t.Errorf("reply-to = %q", req.ReplyTo)
		}
		if req.Tags["announcement_id"] != urgentGST.ID || req.Tags["category"] != "Urgent" {
			t.Errorf("unexpected tags %v", req.Tags)
		}
	}
}

func TestExecuteNotifyUrgent_NotUrgent(t *testing.T) {
	sender := &mockSender{}
	plain := urgentGST
	plain.IsUrgent = false
	n, err := ExecuteNotifyUrgent(context.Background(), NotifyUrgentInput{Announcement: plain}, NotifyUrgentDeps{
		EmailSender: sender,
		Recipients:  []string{"a@futo.edu.ng"},
	})
	if err != nil || n != 0 || len(sender.sent()) != 0 {
		t.Errorf("expected no send, got n=%d err=%v", n, err)
	}
}

func TestExecuteNotifyUrgent_NoRecipients(t *testing.T) {
	_, err := ExecuteNotifyUrgent(context.Background(), NotifyUrgentInput{Announcement: urgentGST}, NotifyUrgentDeps{
		EmailSender: &mockSender{},
	})
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("expected ErrNoRecipients, got %v", err)
	}
}

func TestExecuteNotifyUrgent_ProviderFailure(t *testing.T) {
	sender := &mockSender{err: errors.New("provider down")}
	_, err := ExecuteNotifyUrgent(context.Background(), NotifyUrgentInput{Announcement: urgentGST}, NotifyUrgentDeps{
		EmailSender: sender,
		Recipients:  []string{"a@futo.edu.ng"},
	})
	if err == nil {
		t.Error("expected provider error")
	}
}

func TestUrgentDispatcher_DispatchAndWait(t *testing.T) {
	sender := &mockSender{delay: 20 * time.Millisecond}
	d := NewUrgentDispatcher(NotifyUrgentDeps{EmailSender: sender, Recipients: []string{"a@futo.edu.ng"}}, time.Second)

	start := time.Now()
	d.Dispatch(urgentGST)
	if time.Since(start) >= sender.delay {
		t.Error("Dispatch must not block on the sender")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(sender.sent()) != 1 {
		t.Errorf("expected 1 batch after Wait, got %d", len(sender.sent()))
	}
}

func TestUrgentDispatcher_Timeout(t *testing.T) {
	sender := &mockSender{delay: time.Second}
	d := NewUrgentDispatcher(NotifyUrgentDeps{EmailSender: sender, Recipients: []string{"a@futo.edu.ng"}}, 10*time.Millisecond)
	d.Dispatch(urgentGST)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("broadcast should have been cut off by its own timeout, Wait returned %v", err)
	}
	if len(sender.sent()) != 0 {
		t.Error("expected no batch recorded after timeout")
	}
}
