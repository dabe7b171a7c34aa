package mail

import (
	"context"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSMTPMailerSend(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "account", "password", "no-reply@example.com")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "a@x.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Equal(t, "smtp.example.com:587", gotAddr)
	require.Equal(t, "no-reply@example.com", gotFrom)
	require.Equal(t, []string{"a@x.com"}, gotTo)
	require.Contains(t, string(gotBody), "Subject: Hello\r\n")
	require.Contains(t, string(gotBody), "Content-Type: text/html")
	require.Contains(t, string(gotBody), "\r\n\r\n<p>hi</p>")
}

func TestSMTPMailerHonoursContext(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "", "", "no-reply@example.com")
	release := make(chan struct{})
	defer close(release)
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, m.Send(ctx, Message{To: "a@x.com"}), context.DeadlineExceeded)
}
