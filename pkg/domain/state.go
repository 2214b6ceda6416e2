package domain

// FlowState is the tag stored in EventLog.funcs.
type FlowState string

const (
	FlowIdle         FlowState = ""              // Terminal / resting state
	FlowMenu         FlowState = "funcs_menu"    // Menu shown, waiting for a choice
	FlowCreateRecord FlowState = "create_record" // Date chosen, waiting for content
)

// String returns a printable name; the idle tag is the empty string.
func (f FlowState) String() string {
	if f == FlowIdle {
		return "idle"
	}
	return string(f)
}

// EventLog is the persisted flow state of a group, one per group_id.
// It must be read before and written after every transition.
type EventLog struct {
	GroupID string `json:"group_id" bson:"group_id"`

	// Timestamp is the platform timestamp (ms) of the last event that wrote this document.
	Timestamp int64 `json:"timestamp" bson:"timestamp"`

	Funcs FlowState `json:"funcs" bson:"funcs"`

	// Date is the pending record date (YYYY-MM-DD).
	// Only meaningful while Funcs == FlowCreateRecord.
	Date string `json:"date,omitempty" bson:"date,omitempty"`
}

// NewEventLog creates the idle flow state written when the bot joins a group.
func NewEventLog(groupID string, timestamp int64) *EventLog {
	return &EventLog{
		GroupID:   groupID,
		Timestamp: timestamp,
		Funcs:     FlowIdle,
	}
}

// Transition returns a copy moved to the given state.
// The pending date is dropped unless the new state is FlowCreateRecord.
func (l EventLog) Transition(to FlowState, date string, timestamp int64) *EventLog {
	next := l
	next.Funcs = to
	next.Timestamp = timestamp
	next.Date = ""
	if to == FlowCreateRecord {
		next.Date = date
	}
	return &next
}

// Reset returns a copy moved back to FlowIdle.
func (l EventLog) Reset(timestamp int64) *EventLog {
	return l.Transition(FlowIdle, "", timestamp)
}
