package autherr

import (
	"log"
	"sync"
	"time"
)

// DefaultDebounce is the minimum gap between delivered notifications.
const DefaultDebounce = 5 * time.Second

// NotifyOptions carries presentation hints alongside a notification message.
type NotifyOptions struct {
	Type     Type
	Severity string
	Sticky   bool
}

// Callback receives a delivered notification. Callbacks run synchronously on
// the notifying goroutine; panics are isolated per callback.
type Callback func(message string, opts NotifyOptions)

// Notifier fans notifications out to registered callbacks with a debounce
// window: a call landing within the window of the previous delivered
// notification is suppressed.
type Notifier struct {
	mu        sync.Mutex
	callbacks []Callback
	debounce  time.Duration
	last      time.Time
	now       func() time.Time
}

// NotifierOption configures a [Notifier].
type NotifierOption func(*Notifier)

// WithDebounce overrides the debounce window. Non-positive values disable
// debouncing entirely.
func WithDebounce(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.debounce = d
	}
}

// WithNotifierClock overrides the notifier's time source for tests.
func WithNotifierClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNotifier creates a [Notifier] with the default debounce window.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Register adds a callback. Registration order is delivery order.
func (n *Notifier) Register(cb Callback) {
	if cb == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callbacks = append(n.callbacks, cb)
}

// Notify delivers message to every registered callback unless a previous
// notification was delivered inside the debounce window, in which case it is
// suppressed and Notify returns false. A panicking callback is logged and
// does not prevent the remaining callbacks from firing.
func (n *Notifier) Notify(message string, opts NotifyOptions) bool {
	n.mu.Lock()
	now := n.now()
	if n.debounce > 0 && !n.last.IsZero() && now.Sub(n.last) < n.debounce {
		n.mu.Unlock()
		return false
	}
	n.last = now
	callbacks := make([]Callback, len(n.callbacks))
	copy(callbacks, n.callbacks)
	n.mu.Unlock()

	for _, cb := range callbacks {
		n.invoke(cb, message, opts)
	}
	return true
}

func (n *Notifier) invoke(cb Callback, message string, opts NotifyOptions) {
	defer func() {
		if r := recover(); r != nil {
			log.Print("portalauth: notification callback panicked")
		}
	}()
	cb(message, opts)
}

// HandleAuthError normalizes err, surfaces the mapped user message for
// non-network kinds, and returns the normalized error for the caller to act
// on. Network errors are classified but never notified here; the caller's
// retry policy owns those.
func (n *Notifier) HandleAuthError(err error, context map[string]string) *Error {
	normalized := Normalize(err, context)
	if normalized == nil {
		return nil
	}
	if normalized.Type != TypeNetworkError {
		msg := MessageFor(normalized.Type)
		n.Notify(msg.Text, NotifyOptions{Type: normalized.Type, Severity: "error"})
	}
	return normalized
}
