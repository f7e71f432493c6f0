package domain

import "fmt"

// EventType is the single-letter classification recorded with every logged
// event and analytics fact row.
type EventType string

const (
	EventBlacklisted  EventType = "B"
	EventDebug        EventType = "D"
	EventError        EventType = "E"
	EventInfo         EventType = "I"
	EventLong         EventType = "L" // new long URL submitted
	EventInactive     EventType = "N" // short URL exists but is switched off
	EventResubmitted  EventType = "R" // existing long URL submitted again
	EventRedirect     EventType = "S" // short URL served
	EventUnresolvable EventType = "U"
	EventWarning      EventType = "W"
	EventException    EventType = "X"
	EventUnknown      EventType = "Z"
)

// Label returns the human-readable name of the event type.
func (t EventType) Label() string {
	switch t {
	case EventBlacklisted:
		return "blacklisted"
	case EventDebug:
		return "debug"
	case EventError:
		return "error"
	case EventInfo:
		return "information"
	case EventLong:
		return "long url submitted"
	case EventInactive:
		return "short url inactive"
	case EventResubmitted:
		return "long url resubmitted"
	case EventRedirect:
		return "redirect"
	case EventUnresolvable:
		return "unresolvable"
	case EventWarning:
		return "warning"
	case EventException:
		return "exception"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a pipeline operation. Status follows
// HTTP semantics with one extension: a negative status marks a response whose
// detail must be withheld from the client (-403 renders as a bare 403).
type Outcome struct {
	Type    EventType
	Status  int
	Key     string // canonical message key, e.g. "SHORT_URL_NOT_FOUND"
	Message string
}

// Error implements error so outcomes can travel error returns.
func (o *Outcome) Error() string {
	return fmt.Sprintf("%s (%s %d)", o.Key, o.Type, o.Status)
}

// HTTPStatus returns the status to put on the wire.
func (o *Outcome) HTTPStatus() int {
	if o.Status < 0 {
		return -o.Status
	}
	if o.Status == 0 {
		return 200
	}
	return o.Status
}

// Denied reports whether the response detail must be withheld.
func (o *Outcome) Denied() bool {
	return o.Status < 0 || o.Status == 403
}

// OK reports whether the outcome represents a success.
func (o *Outcome) OK() bool {
	s := o.HTTPStatus()
	return s < 400
}
