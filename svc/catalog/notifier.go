package catalog

import (
	"context"
	"fmt"
	"html"

	"github.com/dmitrymomot/restock/pkg/email"
)

const restockTag = "restock"

// EmailNotifier delivers restock notifications through an email sender.
type EmailNotifier struct {
	sender email.EmailSender
}

func NewEmailNotifier(sender email.EmailSender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) Notify(ctx context.Context, to, productName string) error {
	params := email.SendEmailParams{
		SendTo:   to,
		Subject:  fmt.Sprintf("%s is back in stock", productName),
		BodyHTML: fmt.Sprintf("<p>Good news! <strong>%s</strong> is available again and your reserved quantity is waiting for you.</p>", html.EscapeString(productName)),
		BodyText: fmt.Sprintf("Good news! %s is available again and your reserved quantity is waiting for you.", productName),
		Tag:      restockTag,
	}
	if err := n.sender.SendEmail(ctx, params); err != nil {
		return fmt.Errorf("notify %s: %w", to, err)
	}
	return nil
}
