package mail

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogMailer records messages in the log instead of sending them. Used in development when SMTP is not configured.
type LogMailer struct{}

var _ Mailer = LogMailer{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Str("html", msg.HTML).Msg("[DEV] email not sent")
	return nil
}
