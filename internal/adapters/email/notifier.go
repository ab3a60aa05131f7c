package email

import (
	"context"
	"fmt"
	"log/slog"

	"communityhub/internal/domain"
)

// promotionNotifier emails principals promoted from a waitlist. Address
// resolution goes through the external user system's directory.
type promotionNotifier struct {
	mailer    domain.Mailer
	renderer  domain.EmailTemplateRenderer
	directory domain.PrincipalDirectory
	logger    *slog.Logger
}

// NewPromotionNotifier returns a Notifier that sends the "promotion" email.
func NewPromotionNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, directory domain.PrincipalDirectory, logger *slog.Logger) domain.Notifier {
	return &promotionNotifier{
		mailer:    mailer,
		renderer:  renderer,
		directory: directory,
		logger:    logger,
	}
}

func (n *promotionNotifier) NotifyPromoted(ctx context.Context, principalID string, ev *domain.Event) error {
	to, err := n.directory.EmailFor(ctx, principalID)
	if err != nil {
		return fmt.Errorf("resolve address for %s: %w", principalID, err)
	}

	data := &domain.PromotionEmailData{
		EventTitle: ev.Title,
		StartsAt:   ev.Schedule.StartsAt.Format("Mon, 2 Jan 2006 15:04 MST"),
	}
	subject, htmlBody, textBody, err := n.renderer.Render("promotion", data)
	if err != nil {
		return fmt.Errorf("render promotion template: %w", err)
	}
	if err := n.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send promotion email: %w", err)
	}
	n.logger.Info("promotion email sent", "event_id", ev.ID, "principal_id", principalID)
	return nil
}
