package email

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (m *fakeMailer) Send(to, subject, htmlBody, textBody string) error {
	m.to, m.subject, m.html, m.text = to, subject, htmlBody, textBody
	return m.err
}

type fakeDirectory struct {
	email string
	err   error
}

func (d *fakeDirectory) EmailFor(_ context.Context, _ string) (string, error) {
	return d.email, d.err
}

func promotedEvent() *domain.Event {
	return &domain.Event{
		ID:    "ev-1",
		Title: "Launch Night",
		Schedule: domain.Schedule{
			StartsAt: time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2026, 6, 15, 20, 0, 0, 0, time.UTC),
		},
	}
}

func TestPromotionNotifier(t *testing.T) {
	t.Run("renders and sends the promotion email", func(t *testing.T) {
		mailer := &fakeMailer{}
		notifier := NewPromotionNotifier(mailer, NewTemplateRenderer(), &fakeDirectory{email: "bob@example.com"}, slog.Default())

		err := notifier.NotifyPromoted(context.Background(), "bob", promotedEvent())
		require.NoError(t, err)

		assert.Equal(t, "bob@example.com", mailer.to)
		assert.Contains(t, mailer.subject, "Launch Night")
		assert.Contains(t, mailer.text, "Launch Night")
		assert.Contains(t, mailer.html, "Launch Night")
		assert.Contains(t, mailer.text, "Mon, 15 Jun 2026 18:00 UTC")
	})

	t.Run("directory failure surfaces", func(t *testing.T) {
		notifier := NewPromotionNotifier(&fakeMailer{}, NewTemplateRenderer(), &fakeDirectory{err: domain.ErrNotFound}, slog.Default())
		err := notifier.NotifyPromoted(context.Background(), "ghost", promotedEvent())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("mailer failure surfaces", func(t *testing.T) {
		mailer := &fakeMailer{err: errors.New("ses throttled")}
		notifier := NewPromotionNotifier(mailer, NewTemplateRenderer(), &fakeDirectory{email: "bob@example.com"}, slog.Default())
		err := notifier.NotifyPromoted(context.Background(), "bob", promotedEvent())
		assert.Error(t, err)
	})
}
