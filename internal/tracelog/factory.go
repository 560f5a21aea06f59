package tracelog

import (
	"fmt"
	"io"
	"sync"

	"github.com/joeycumines/logiface"
)

// Logger is the shared state backing a logiface.Logger[*Event]: it pools
// Event values, stamps each with the current clock reading, and writes the
// finished line out. Grounded on logiface-stumpy's Logger/LoggerFactory
// split (factory.go), with the JSON-specific options stripped.
type Logger struct {
	writer io.Writer
	clock  Clock
	mu     sync.Mutex
	pool   sync.Pool
}

// New returns a logiface.Option that wires a tracelog Logger in as the
// EventFactory, EventReleaser and Writer for a logiface.Logger[*Event],
// mirroring stumpy.WithStumpy's composition of those three roles into one
// concrete type.
func New(w io.Writer, clock Clock) logiface.Option[*Event] {
	l := &Logger{writer: w, clock: clock}
	l.pool.New = func() any { return &Event{logger: l} }
	return logiface.WithOptions[*Event](
		logiface.WithWriter[*Event](l),
		logiface.WithEventFactory[*Event](l),
		logiface.WithEventReleaser[*Event](l),
	)
}

func (l *Logger) NewEvent(level logiface.Level) *Event {
	e := l.pool.Get().(*Event)
	e.lvl = level
	e.micros = l.clock.NowMicros()
	return e
}

func (l *Logger) ReleaseEvent(event *Event) {
	event.reset()
	event.logger = l
	l.pool.Put(event)
}

// Write renders "<micros> <actor> <message>\n" to the underlying writer.
func (l *Logger) Write(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.writer, "%d %s %s\n", event.micros, event.actor, event.message)
	return err
}
