package email

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/restock/pkg/logger"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = logger.Discard()
	}
	return &LogSender{log: log.With(logger.Component("email"))}
}

func (s *LogSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "email sent",
		logger.Email(params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	return nil
}
