package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func stubSendMail(t *testing.T, err error) *capturedMail {
	t.Helper()
	captured := &capturedMail{}
	orig := sendMail
	sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return err
	}
	t.Cleanup(func() { sendMail = orig })
	return captured
}

func newMailer(t *testing.T) *SMTPMailer {
	t.Helper()
	m, err := NewSMTPMailer("smtp.example.com", 587, "mailer", "pw", "noreply@example.com", "https://example.com/")
	require.NoError(t, err)
	return m
}

func TestSendVerificationEmail_BuildsLinkAndHeaders(t *testing.T) {
	m := newMailer(t)
	captured := stubSendMail(t, nil)

	err := m.SendVerificationEmail(context.Background(), "a@x.com", "tok-123")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.Equal(t, "noreply@example.com", captured.from)
	assert.Equal(t, []string{"a@x.com"}, captured.to)
	assert.Contains(t, captured.msg, "Subject: Verify your email address")
	assert.Contains(t, captured.msg, "https://example.com/auth/verify-email?token=tok-123")
}

func TestSendPasswordResetEmail_BuildsLink(t *testing.T) {
	m := newMailer(t)
	captured := stubSendMail(t, nil)

	err := m.SendPasswordResetEmail(context.Background(), "a@x.com", "tok-456")
	require.NoError(t, err)

	assert.Contains(t, captured.msg, "Subject: Reset your password")
	assert.Contains(t, captured.msg, "https://example.com/auth/reset-password?token=tok-456")
}

func TestSend_RelayError(t *testing.T) {
	m := newMailer(t)
	stubSendMail(t, errors.New("relay down"))

	err := m.SendVerificationEmail(context.Background(), "a@x.com", "tok")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "relay down"))
}

func TestSend_CancelledContext(t *testing.T) {
	m := newMailer(t)
	captured := stubSendMail(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendVerificationEmail(ctx, "a@x.com", "tok")
	require.Error(t, err)
	assert.Empty(t, captured.msg, "must not dial the relay after cancellation")
}
