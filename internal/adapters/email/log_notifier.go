package email

import (
	"context"
	"log/slog"

	"communityhub/internal/domain"
)

// logNotifier records promotions without sending anything. Used when no
// principal directory integration is configured.
type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a Notifier that only logs promotions.
func NewLogNotifier(logger *slog.Logger) domain.Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) NotifyPromoted(_ context.Context, principalID string, ev *domain.Event) error {
	n.logger.Info("principal promoted from waitlist", "event_id", ev.ID, "principal_id", principalID)
	return nil
}
