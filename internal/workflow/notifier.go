package workflow

import "time"

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// DefaultAlertDelay is how long non-critical alerts stay on screen.
const DefaultAlertDelay = 5 * time.Second

// Icon returns the glyph name shown next to messages of this severity.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "check-circle"
	case SeverityDanger:
		return "exclamation-triangle"
	case SeverityWarning:
		return "exclamation-circle"
	default:
		return "info-circle"
	}
}

// Persistent reports whether alerts of this severity stay until dismissed.
func (s Severity) Persistent() bool {
	return s == SeverityDanger
}

// Alert is a single displayed notification.
type Alert struct {
	ID       uint64
	Severity Severity
	Icon     string
	Message  string
}

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc calls f in its own goroutine after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notifier keeps at most one alert on the view at a time.
type Notifier struct {
	view     AlertView
	dispatch Dispatcher
	delay    time.Duration
	after    AfterFunc

	nextID  uint64
	current *Alert
	timer   Timer
}

// NewNotifier creates a notifier. A nil after uses time.AfterFunc.
func NewNotifier(view AlertView, dispatch Dispatcher, delay time.Duration, after AfterFunc) *Notifier {
	if after == nil {
		after = stdAfterFunc
	}
	if delay <= 0 {
		delay = DefaultAlertDelay
	}
	return &Notifier{
		view:     view,
		dispatch: dispatch,
		delay:    delay,
		after:    after,
	}
}

// Show replaces the current alert with a new one.
func (n *Notifier) Show(message string, severity Severity) Alert {
	n.clear()

	n.nextID++
	alert := Alert{
		ID:       n.nextID,
		Severity: severity,
		Icon:     severity.Icon(),
		Message:  message,
	}
	n.current = &alert
	n.view.ShowAlert(alert)

	if !severity.Persistent() {
		id := alert.ID
		n.timer = n.after(n.delay, func() {
			n.dispatch.Post(func() { n.Dismiss(id) })
		})
	}
	return alert
}

// Dismiss removes the alert with the given id if it is still displayed.
func (n *Notifier) Dismiss(id uint64) {
	if n.current == nil || n.current.ID != id {
		return
	}
	n.clear()
}

// Current returns the displayed alert, if any.
func (n *Notifier) Current() (Alert, bool) {
	if n.current == nil {
		return Alert{}, false
	}
	return *n.current, true
}

// Stop cancels the pending auto-dismiss without touching the view.
func (n *Notifier) Stop() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) clear() {
	n.Stop()
	if n.current != nil {
		n.view.RemoveAlert(n.current.ID)
		n.current = nil
	}
}
