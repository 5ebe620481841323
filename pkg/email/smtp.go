package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/go-mail/mail"
)

type smtpSender struct {
	dialer *mail.Dialer
	from   string
	reply  string
}

// NewSMTPSender sends through an SMTP relay. TLS mode "ssl" uses implicit
// TLS and "none" disables certificate checks for local relays such as MailHog.
func NewSMTPSender(cfg Config) (EmailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTP_PORT must be positive", ErrInvalidConfig)
	}
	if !isEmail(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SENDER_EMAIL must be a valid email address", ErrInvalidConfig)
	}

	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	switch cfg.SMTPTLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // local relays only
	case "starttls", "":
	default:
		return nil, fmt.Errorf("%w: unknown SMTP_TLS_MODE %q", ErrInvalidConfig, cfg.SMTPTLSMode)
	}

	return &smtpSender{dialer: d, from: cfg.SenderEmail, reply: cfg.SupportEmail}, nil
}

func (s *smtpSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", params.SendTo)
	if s.reply != "" {
		m.SetHeader("Reply-To", s.reply)
	}
	m.SetHeader("Subject", params.Subject)
	switch {
	case params.BodyText != "" && params.BodyHTML != "":
		m.SetBody("text/plain", params.BodyText)
		m.AddAlternative("text/html", params.BodyHTML)
	case params.BodyHTML != "":
		m.SetBody("text/html", params.BodyHTML)
	default:
		m.SetBody("text/plain", params.BodyText)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}
