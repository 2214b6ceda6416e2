package domain

// EventKind identifies an Event variant.
type EventKind string

const (
	EventJoin     EventKind = "join"
	EventLeave    EventKind = "leave"
	EventMessage  EventKind = "message"
	EventPostback EventKind = "postback"
)

// Source holds the fields shared by every inbound event.
type Source struct {
	GroupID string
	UserID  string

	// ReplyToken is the one-time handle for replying. Leave events carry none.
	ReplyToken string

	// Timestamp is the platform event time in milliseconds.
	Timestamp int64
}

// Event is a decoded platform event. The concrete type is one of
// JoinEvent, LeaveEvent, MessageEvent or PostbackEvent.
type Event interface {
	Kind() EventKind
	Origin() Source
}

// JoinEvent is emitted when the bot is added to a group.
type JoinEvent struct {
	Source
}

// LeaveEvent is emitted when the bot is removed from a group.
type LeaveEvent struct {
	Source
}

// MessageEvent carries a text message posted in a group.
type MessageEvent struct {
	Source
	Text string
}

// PostbackParams holds the typed parameters of a postback action.
// Date is filled by date pickers in "date" mode.
type PostbackParams struct {
	Date     string `mapstructure:"date"`
	Time     string `mapstructure:"time"`
	Datetime string `mapstructure:"datetime"`
}

// PostbackEvent is emitted when a member taps a postback or date picker action.
type PostbackEvent struct {
	Source
	Data   string
	Params PostbackParams
}

func (e JoinEvent) Kind() EventKind     { return EventJoin }
func (e LeaveEvent) Kind() EventKind    { return EventLeave }
func (e MessageEvent) Kind() EventKind  { return EventMessage }
func (e PostbackEvent) Kind() EventKind { return EventPostback }

func (s Source) Origin() Source { return s }
