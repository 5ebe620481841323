package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/pkg/email"
)

func TestEmailNotifier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sends restock message", func(t *testing.T) {
		t.Parallel()
		sender := &MockEmailSender{}
		sender.On("SendEmail", ctx, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "a@example.com" &&
				p.Subject == "<Lamp> is back in stock" &&
				p.Tag == restockTag &&
				p.BodyText != "" &&
				!strings.Contains(p.BodyHTML, "<Lamp>")
		})).Return(nil)

		require.NoError(t, NewEmailNotifier(sender).Notify(ctx, "a@example.com", "<Lamp>"))
		sender.AssertExpectations(t)
	})

	t.Run("wraps sender errors", func(t *testing.T) {
		t.Parallel()
		sender := &MockEmailSender{}
		sender.On("SendEmail", ctx, mock.Anything).Return(email.ErrFailedToSendEmail)

		err := NewEmailNotifier(sender).Notify(ctx, "a@example.com", "Lamp")
		assert.True(t, errors.Is(err, email.ErrFailedToSendEmail))
	})
}
