package portalauth

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/rojgarlink/portalauth/autherr"
)

// monitor is the background expiration watcher. It polls the credential
// store while the session is authenticated and owns the expiry/warning
// notifications. It never logs the user out because of its own failures;
// only an actually expired token ends the session.
type monitor struct {
	engine   *Engine
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

func newMonitor(engine *Engine, interval time.Duration) *monitor {
	return &monitor{
		engine:   engine,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (m *monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			select {
			case <-m.done:
				return
			default:
			}
			m.engine.monitorTick(context.Background())
		}
	}
}

// Stop signals the monitor to exit. It does not wait: the expiry path runs
// Logout from the monitor goroutine itself, and a blocking Stop there would
// deadlock. The run loop re-checks authentication at execution time, so no
// storage read can land on behalf of a cleared session.
func (m *monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

func (e *Engine) startMonitor() {
	if !e.config.Monitor.Enabled {
		return
	}
	e.monMu.Lock()
	defer e.monMu.Unlock()
	if e.monitor != nil {
		return
	}
	m := newMonitor(e, e.config.Monitor.Interval)
	e.monitor = m
	go m.run()
}

func (e *Engine) stopMonitor() {
	e.monMu.Lock()
	defer e.monMu.Unlock()
	if e.monitor != nil {
		e.monitor.Stop()
		e.monitor = nil
	}
}

// monitorTick is one poll of the expiration watcher. It skips entirely when
// unauthenticated (checked now, not at schedule time). An expired token
// yields one notification plus the automatic logout; inside the warning
// window it emits the debounced minutes-remaining warning. A panic is
// contained and logged so the session survives monitoring failures.
func (e *Engine) monitorTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Print("portalauth: session monitor tick panicked, keeping session state")
		}
	}()

	if !e.isAuthenticated() {
		return
	}

	if e.CheckTokenExpiration(ctx) {
		return
	}

	if e.store.ShouldShowExpirationWarning(ctx) {
		remaining, ok := e.store.TimeUntilExpiration(ctx)
		if !ok {
			return
		}
		e.metricInc(MetricExpirationWarning)
		msg := fmt.Sprintf("Your session will expire in %s. Please save your work.", formatMinutes(remaining))
		if !e.notifier.Notify(msg, autherr.NotifyOptions{Type: autherr.TypeTokenExpired, Severity: "warning"}) {
			e.metricInc(MetricNotificationSuppressed)
		}
	}
}

// formatMinutes renders a duration as whole minutes with correct singular
// and plural forms, rounding up so "0 minutes" never appears for a live
// token.
func formatMinutes(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
