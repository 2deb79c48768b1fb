package session

// EventType classifies session changes.
type EventType int

const (
	EventOpened     EventType = iota // challenge attempt window opened
	EventSubmitted                   // a submission was counted
	EventClosed                      // attempt window closed after a solve
	EventMultiplier                  // session XP multiplier changed
)

func (t EventType) String() string {
	switch t {
	case EventOpened:
		return "opened"
	case EventSubmitted:
		return "submitted"
	case EventClosed:
		return "closed"
	case EventMultiplier:
		return "multiplier"
	}
	return "unknown"
}

// Event carries a session change to observers.
type Event struct {
	Type       EventType
	Attempt    Attempt // zero for EventMultiplier
	Multiplier float64
	OpenCount  int // open attempts at event time
}
