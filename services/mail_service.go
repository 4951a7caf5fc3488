package services

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/utils"
)

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Send delivers a plain text message
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer for environments without an SMTP relay
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("Email not sent, no SMTP relay configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// MailDispatcher sends mail in the background and logs failures
type MailDispatcher struct {
	mailer  Mailer
	logger  *zap.Logger
	timeout time.Duration
}

// NewMailDispatcher wraps mailer with fire-and-forget delivery
func NewMailDispatcher(mailer Mailer, logger *zap.Logger) *MailDispatcher {
	return &MailDispatcher{mailer: mailer, logger: logger, timeout: 30 * time.Second}
}

// Dispatch sends the message without blocking the caller
func (d *MailDispatcher) Dispatch(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.mailer.Send(ctx, to, subject, body)
		utils.MailsTotal.WithLabelValues(utils.Outcome(err)).Inc()
		if err != nil {
			d.logger.Warn("Email delivery failed",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}
