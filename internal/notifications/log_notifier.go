package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LogNotifier writes notifications to the structured log instead of an
// external mail provider. Env knobs simulate provider latency and outages
// for exercising the worker retry path.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}

	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendContactNotification(ctx context.Context, in ContactNotificationInput) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)

		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	n.log.InfoContext(ctx, "notification.contact_message",
		"message_id", in.MessageID,
		"from_name", in.Name,
		"from_email", in.Email,
		"subject", in.Subject,
	)

	return nil
}
