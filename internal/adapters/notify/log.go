package notify

import (
	"context"

	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"
)

// LogNotifier es el sink de dev: sólo loguea.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, msg notifier.Message) error {
	n.log.Info("notification", map[string]any{
		"kind":    msg.Kind,
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
