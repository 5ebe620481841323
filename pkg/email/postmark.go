package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkClient struct {
	client *postmark.Client
	from   string
	reply  string
}

// NewPostmarkClient requires both Postmark tokens and valid sender addresses.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	switch {
	case cfg.PostmarkServerToken == "":
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	case cfg.PostmarkAccountToken == "":
		return nil, fmt.Errorf("%w: POSTMARK_ACCOUNT_TOKEN is required", ErrInvalidConfig)
	case !isEmail(cfg.SenderEmail):
		return nil, fmt.Errorf("%w: SENDER_EMAIL must be a valid email address", ErrInvalidConfig)
	case !isEmail(cfg.SupportEmail):
		return nil, fmt.Errorf("%w: SUPPORT_EMAIL must be a valid email address", ErrInvalidConfig)
	}

	return &postmarkClient{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   cfg.SenderEmail,
		reply:  cfg.SupportEmail,
	}, nil
}

func (c *postmarkClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       c.from,
		ReplyTo:    c.reply,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TextBody:   params.BodyText,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
