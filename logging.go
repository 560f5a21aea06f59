package uthread

import (
	"io"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"

	"github.com/kollipatisravanthi-a11y/uthread/internal/tracelog"
)

// newTraceLogger builds the logiface.Logger[*Event] that emits every
// required spec.md §6 log line ("<microseconds> <actor> <message>") to w.
func newTraceLogger(w io.Writer, clock Clock) *logiface.Logger[*tracelog.Event] {
	return logiface.New[*tracelog.Event](
		logiface.WithLevel[*tracelog.Event](logiface.LevelTrace),
		tracelog.New(w, clock),
	)
}

// log emits a required (never rate-limited) log line of the form
// "<micros> <actor> <message>".
func (rt *Runtime) log(actor, message string) {
	rt.logger.Info().Str("actor", actor).Log(message)
}

// logf is log with fmt.Sprintf-style formatting of the message.
func (rt *Runtime) logf(actor, format string, args ...any) {
	rt.logger.Info().Str("actor", actor).Logf(format, args...)
}

// diagnostic emits a non-required diagnostic line, throttled per category by
// go-catrate so a busy-spin (e.g. the idle dispatch poll, or repeated
// LockSlotExhausted misses from the same thread) can't flood the log the way
// an unthrottled per-iteration log line would. Required log tokens (the ones
// named in spec.md §6/§7) are never routed through this path.
func (rt *Runtime) diagnostic(category any, actor, message string) {
	if _, ok := rt.diagLimiter.Allow(category); ok {
		rt.logger.Debug().Str("actor", actor).Log(message)
	}
}

// defaultDiagRates is the sliding-window budget applied to diagnostic log
// categories: at most 5 lines per 100ms, and at most 20 per second, per
// category. Chosen so a tight idle-poll or exhaustion loop logs a
// representative sample instead of nothing, without burying the required
// log lines around it.
func defaultDiagRates() map[time.Duration]int {
	return map[time.Duration]int{
		100 * time.Millisecond: 5,
		time.Second:            20,
	}
}

func newDiagLimiter() *catrate.Limiter {
	return catrate.NewLimiter(defaultDiagRates())
}
