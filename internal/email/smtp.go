package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP connection parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // optional, some relays accept unauthenticated mail
	Password string
	From     string // default sender address
	FromName string
}

// SMTPSender implements Sender using go-mail.
type SMTPSender struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPSender creates an SMTP sender from a config struct.
func NewSMTPSender(config SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{config: config, logger: logger}
}

// Send delivers email via SMTP.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	msg := mail.NewMsg()

	from, fromName := email.From, email.FromName
	if from == "" {
		from = s.config.From
	}
	if fromName == "" {
		fromName = s.config.FromName
	}
	if err := msg.FromFormat(fromName, from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(email.Subject)

	switch {
	case email.HTMLBody != "" && email.TextBody != "":
		msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTMLBody)
	case email.HTMLBody != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTMLBody)
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("smtp: failed to send email",
			"host", s.config.Host,
			"port", s.config.Port,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("smtp: email sent", "to", email.To, "subject", email.Subject)
	return nil
}

// clientOptions picks the TLS mode from the port: 465 is implicit TLS,
// 587 requires STARTTLS, anything else tries it opportunistically.
func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	switch s.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" && s.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}
	return opts
}
