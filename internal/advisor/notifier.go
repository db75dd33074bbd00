package advisor

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

// LogNotifier writes notifications to the log instead of delivering them.
// It backs DRY_RUN.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.logger.Info("dry run: notification not sent",
		"run_id", msg.RunID,
		"topic", msg.Topic,
		"title", msg.Title,
		"message", msg.Message,
	)
	return nil
}
