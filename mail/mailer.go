package mail

import "context"

// Message is a single HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers one message. Implementations should honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
