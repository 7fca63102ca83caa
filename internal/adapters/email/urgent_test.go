package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderUrgent(t *testing.T) {
	subject, html, err := RenderUrgent(UrgentMessage{
		Title:       "Rescheduling of GST 101 Exams",
		Description: "The exam moves to **Friday**.\nVenue: <script>alert(1)</script>",
		Category:    "Urgent",
		Tag:         "EXAMS",
	})
	if err != nil {
		t.Fatalf("RenderUrgent: %v", err)
	}
	if subject != "[URGENT] Rescheduling of GST 101 Exams" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"<strong>Friday</strong>", "<br>", "Urgent · Urgent · EXAMS", "Rescheduling of GST 101 Exams"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML from markdown was not escaped:\n%s", html)
	}
}

func TestRenderUrgent_EscapesTitle(t *testing.T) {
	_, html, err := RenderUrgent(UrgentMessage{Title: "<b>Hall</b> closed", Description: "x"})
	if err != nil {
		t.Fatalf("RenderUrgent: %v", err)
	}
	if strings.Contains(html, "<b>Hall</b>") {
		t.Errorf("title not escaped:\n%s", html)
	}
}

func TestNoopSender_SendBatch(t *testing.T) {
	s := NewNoopSender()
	reqs := []SendRequest{
		{To: []string{"a@futo.edu.ng"}, Subject: "one"},
		{To: []string{"b@futo.edu.ng"}, Subject: "two"},
	}
	results, err := s.SendBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != len(reqs) {
		t.Fatalf("results = %d, want %d", len(results), len(reqs))
	}
	for i, r := range results {
		if !strings.HasPrefix(r.MessageID, "noop-") || r.SentAt.IsZero() {
			t.Errorf("result[%d] = %+v", i, r)
		}
	}
}
