// Package notify delivers desktop notifications over the session bus.
// When no notification daemon is reachable it degrades to log-only
// output; a desktop without a notifier should never break a monitor loop.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"

	appName   = "outputd"
	timeoutMS = 5000
)

type Notifier interface {
	Notify(ctx context.Context, sev Severity, title, body string) error
}

// New returns a D-Bus backed notifier, or the log-only fallback if the
// session bus is unreachable.
func New() Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		slog.Warn("session bus unavailable; notifications will be logged only", "error", err)
		return &LogNotifier{}
	}

	return &busNotifier{conn: conn}
}

type busNotifier struct {
	conn *dbus.Conn
}

func (n *busNotifier) Notify(ctx context.Context, sev Severity, title, body string) error {
	obj := n.conn.Object(notifyDest, notifyPath)
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency(sev)),
	}

	call := obj.CallWithContext(ctx, notifyMethod, 0,
		appName, uint32(0), "", title, body, []string{}, hints, int32(timeoutMS))
	if call.Err != nil {
		return fmt.Errorf("calling %s: %w", notifyMethod, call.Err)
	}

	return nil
}

// urgency maps severity onto the freedesktop urgency hint levels.
func urgency(sev Severity) byte {
	switch sev {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// LogNotifier writes notifications to the log instead of the bus.
type LogNotifier struct{}

func (n *LogNotifier) Notify(_ context.Context, sev Severity, title, body string) error {
	switch sev {
	case SeverityError:
		slog.Error("notification", "title", title, "body", body)
	case SeverityWarning:
		slog.Warn("notification", "title", title, "body", body)
	default:
		slog.Info("notification", "title", title, "body", body)
	}
	return nil
}
