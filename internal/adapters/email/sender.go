package email

import "context"

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email through an external provider.
// Send returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
