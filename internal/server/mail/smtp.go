package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

// SMTPMailer delivers account e-mails through a plain SMTP relay.
type SMTPMailer struct {
	addr      string
	host      string
	user      string
	password  string
	from      string
	baseURL   string
	templates *template.Template
}

// NewSMTPMailer parses the embedded message templates and returns a mailer
// bound to the given relay. baseURL is the public origin used to build the
// links embedded in messages.
func NewSMTPMailer(host string, port int, user, password, from, baseURL string) (*SMTPMailer, error) {
	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("error parsing email templates: %w", err)
	}

	return &SMTPMailer{
		addr:      fmt.Sprintf("%s:%d", host, port),
		host:      host,
		user:      user,
		password:  password,
		from:      from,
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: tmpl,
	}, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, email string, token string) error {
	data := verificationData{
		VerifyURL: fmt.Sprintf("%s/auth/verify-email?token=%s", m.baseURL, token),
	}

	body, err := m.render("verification", data)
	if err != nil {
		return err
	}

	return m.send(ctx, email, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	data := passwordResetData{
		ResetURL: fmt.Sprintf("%s/auth/reset-password?token=%s", m.baseURL, token),
	}

	body, err := m.render("password_reset", data)
	if err != nil {
		return err
	}

	return m.send(ctx, email, "Reset your password", body)
}

func (m *SMTPMailer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("error rendering %s template: %w", name, err)
	}
	return buf.String(), nil
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	if err := sendMail(m.addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("error sending mail: %w", err)
	}

	return nil
}
