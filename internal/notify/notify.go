// Package notify carries user-facing notifications from workflows to
// whatever surface renders them. Workflows emit exactly one notification
// per outcome; the TUI decides how to show it.
package notify

import "log/slog"

// Type classifies a notification for display.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
)

// Notification is a transient title + message pair.
type Notification struct {
	Type    Type
	Title   string
	Message string
}

// Notifier receives notifications emitted by workflows.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to the Notifier interface.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Recorder collects notifications for assertions in tests.
type Recorder struct {
	Notifications []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.Notifications = append(r.Notifications, n)
}

// Count returns how many notifications of the given type were recorded.
func (r *Recorder) Count(t Type) int {
	n := 0
	for _, rec := range r.Notifications {
		if rec.Type == t {
			n++
		}
	}
	return n
}

// Logged wraps a notifier so every notification is also written to the
// structured log; headless commands use it as their only surface.
func Logged(logger *slog.Logger, next Notifier) Notifier {
	return Func(func(n Notification) {
		switch n.Type {
		case Error:
			logger.Error(n.Message, "title", n.Title)
		case Warning:
			logger.Warn(n.Message, "title", n.Title)
		default:
			logger.Info(n.Message, "title", n.Title)
		}
		if next != nil {
			next.Notify(n)
		}
	})
}
