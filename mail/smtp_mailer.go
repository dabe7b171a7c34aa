package mail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/pkg/errors"
)

// SMTPMailer sends through an authenticated SMTP relay using STARTTLS when offered
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
	// sendMail is smtp.SendMail, replaceable in tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host, port, account, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if account != "" {
		auth = smtp.PlainAuth("", account, password, host)
	}
	return &SMTPMailer{
		addr:     net.JoinHostPort(host, port),
		auth:     auth,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	body := m.render(msg)
	done := make(chan error, 1)
	go func() {
		done <- m.sendMail(m.addr, m.auth, m.from, []string{msg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "[SMTPMailer.Send] failed to send to %s", msg.To)
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "[SMTPMailer.Send] abandoned")
	}
}

func (m *SMTPMailer) render(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}
