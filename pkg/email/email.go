package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	ErrFailedToSendEmail = errors.New("email: failed to send")
	ErrInvalidConfig     = errors.New("email: invalid config")
	ErrInvalidParams     = errors.New("email: invalid params")
	ErrUnknownDriver     = errors.New("email: unknown driver")
)

// EmailSender delivers a single message.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func (p SendEmailParams) Validate() error {
	switch {
	case strings.TrimSpace(p.SendTo) == "":
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	case !isEmail(p.SendTo):
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	case strings.TrimSpace(p.BodyHTML) == "" && strings.TrimSpace(p.BodyText) == "":
		return fmt.Errorf("%w: a body is required", ErrInvalidParams)
	}
	return nil
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}
