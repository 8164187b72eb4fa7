package push

import (
	"context"
	"log/slog"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

// LogPublisher only logs; used when no push channel is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs the publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "push.log")}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(_ context.Context, n notification.Notification) error {
	p.logger.Info("notification", "id", n.ID, "channel", n.Channel, "kind", n.Kind, "title", n.Title)
	return nil
}

var _ notification.Publisher = (*LogPublisher)(nil)
