// Package tracelog is a minimal logiface.Event implementation that renders
// events in the plain-text wire format spec.md §6 requires:
//
//	<microseconds> <actor> <message>
//
// It is modeled on logiface-stumpy's Event/Logger split (Event holds the
// per-call state; Logger is the shared EventFactory/EventReleaser/Writer),
// with the JSON encoding machinery removed, since this format has no fields,
// only an actor and a message.
package tracelog
