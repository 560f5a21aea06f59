package tracelog

import "github.com/joeycumines/logiface"

// Clock supplies the monotonic microsecond timestamp stamped onto each
// Event at creation. Satisfied structurally by uthread.Clock; kept as its
// own interface here so this package doesn't import its parent.
type Clock interface {
	NowMicros() int64
}

// Event is the per-log-call state. Only the actor and message are rendered;
// every other field type the logiface.Event interface supports is accepted
// (to satisfy the interface and any generic Builder calls made against it)
// but not retained, since the wire format spec.md mandates has no room for
// arbitrary structured fields.
type Event struct {
	logiface.UnimplementedEvent

	logger  *Logger
	lvl     logiface.Level
	micros  int64
	actor   string
	message string
}

func (x *Event) Level() logiface.Level { return x.lvl }

// AddField implements the required logiface.Event method. "actor" is the
// one key this implementation's callers ever set via a generic field
// method; anything else is accepted and discarded.
func (x *Event) AddField(key string, val any) {
	if key == "actor" {
		if s, ok := val.(string); ok {
			x.actor = s
		}
	}
}

func (x *Event) AddString(key string, val string) bool {
	if key == "actor" {
		x.actor = val
		return true
	}
	return false
}

func (x *Event) AddMessage(msg string) bool {
	x.message = msg
	return true
}

func (x *Event) reset() {
	x.logger = nil
	x.lvl = logiface.LevelDisabled
	x.micros = 0
	x.actor = ""
	x.message = ""
}
