package email

import (
	"fmt"
	"log/slog"
)

const (
	DriverLog      = "log"
	DriverDev      = "dev"
	DriverPostmark = "postmark"
	DriverSMTP     = "smtp"
)

type Config struct {
	Driver       string `env:"EMAIL_DRIVER" envDefault:"log"`
	SenderEmail  string `env:"SENDER_EMAIL" envDefault:"no-reply@restock.local"`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"support@restock.local"`

	DevDir string `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPTLSMode  string `env:"SMTP_TLS_MODE" envDefault:"starttls"` // starttls | ssl | none
}

// New builds the sender selected by cfg.Driver.
func New(cfg Config, log *slog.Logger) (EmailSender, error) {
	switch cfg.Driver {
	case DriverLog, "":
		return NewLogSender(log), nil
	case DriverDev:
		return NewDevSender(cfg.DevDir), nil
	case DriverPostmark:
		return NewPostmarkClient(cfg)
	case DriverSMTP:
		return NewSMTPSender(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
