package scope

import "github.com/wippyai/dispose/resource"

// EventType identifies a scope lifecycle notification.
type EventType uint8

const (
	EventAdded EventType = iota
	EventRemoved
	EventCleared
	EventDrainStarted
	EventReleaseFailed
	EventDrainSkipped
	EventDrainCompleted
)

var eventNames = [...]string{
	EventAdded:          "added",
	EventRemoved:        "removed",
	EventCleared:        "cleared",
	EventDrainStarted:   "drain_started",
	EventReleaseFailed:  "release_failed",
	EventDrainSkipped:   "drain_skipped",
	EventDrainCompleted: "drain_completed",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event describes something that happened to a scope.
//
// Count is the number of resources involved: the batch size for
// EventDrainStarted and EventCleared, the attempted releases for
// EventDrainCompleted.
type Event struct {
	Resource resource.Resource
	Err      error
	Scope    string
	Count    int
	Type     EventType
}

// Observer receives scope lifecycle notifications.
//
// Observers are called without any scope lock held and may call back into
// the scope.
type Observer interface {
	OnScopeEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnScopeEvent calls f(e).
func (f ObserverFunc) OnScopeEvent(e Event) {
	f(e)
}
