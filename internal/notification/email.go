package notification

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// EmailSender delivers a single HTML email.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SMTPEmailSender sends email through a plain SMTP relay. Lab relays accept
// unauthenticated submissions from inside the network, so no auth is
// attempted.
type SMTPEmailSender struct {
	host   string
	port   int
	sender string
	logger *slog.Logger
}

// NewSMTPEmailSender creates a new SMTPEmailSender.
func NewSMTPEmailSender(host string, port int, sender string, logger *slog.Logger) *SMTPEmailSender {
	return &SMTPEmailSender{
		host:   host,
		port:   port,
		sender: sender,
		logger: logger,
	}
}

// Send delivers one HTML message to all recipients.
func (s *SMTPEmailSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}

	var message bytes.Buffer
	fmt.Fprintf(&message, "From: %s\r\n", s.sender)
	fmt.Fprintf(&message, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return apperrors.Wrapf(err, "failed to connect to SMTP server %s", addr)
	}
	defer func() {
		_ = conn.Close()
	}()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return apperrors.Wrap(err, "failed to create SMTP client")
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.sender); err != nil {
		return apperrors.Wrapf(err, "failed to set sender %s", s.sender)
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return apperrors.Wrapf(err, "failed to set recipient %s", recipient)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return apperrors.Wrap(err, "failed to initiate data transfer")
	}
	if _, err := wc.Write(message.Bytes()); err != nil {
		_ = wc.Close()
		return apperrors.Wrap(err, "failed to write message")
	}
	if err := wc.Close(); err != nil {
		return apperrors.Wrap(err, "failed to finish data transfer")
	}

	s.logger.Info("email sent", "to", to, "subject", subject)

	return client.Quit()
}
