package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "FUTO Connect <noreply@futo.edu.ng>"); empty uses the sender default
	Subject string
	HTML    string // HTML body
	ReplyTo string // Address replies go to; empty means the From address
	// Tags label the message in the provider's delivery logs, e.g. announcement_id.
	// Keys and values are reduced to ASCII letters, digits, '_' and '-'.
	Tags map[string]string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers email through an external provider.
// SendBatch returns one result per accepted request, in request order.
type Sender interface {
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
