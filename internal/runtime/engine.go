package runtime

import (
	"errors"
	"fmt"

	"github.com/aretw0/grouplog/pkg/domain"
)

// ErrUnsupportedEvent is returned for event variants the engine has no handler for.
var ErrUnsupportedEvent = errors.New("unsupported event")

// Decision is the outcome of interpreting one event against the stored flow state.
// The engine never performs I/O; the dispatcher applies the decision in field order:
// Remove, Group, Record, Flow, then Lookup/Reply.
type Decision struct {
	// Group is a GroupInfo to create (join).
	Group *domain.GroupInfo

	// Remove deletes the GroupInfo, EventLog and every Calendar record of the group (leave).
	Remove bool

	// Record is a Calendar record to append.
	Record *domain.CalendarRecord

	// Flow is the next flow state. Nil leaves the stored state untouched.
	Flow *domain.EventLog

	// Lookup asks the dispatcher to fetch a record and build the reply with RecordReply.
	Lookup bool

	// Reply is sent through the event's reply token. Nil means silent.
	Reply domain.Reply
}

// Engine is the group record state machine.
// It is stateless: every decision is a function of the event and the stored EventLog.
type Engine struct {
	keyword string
}

// Option configures the Engine.
type Option func(*Engine)

// WithKeyword overrides the text that opens the record menu.
func WithKeyword(keyword string) Option {
	return func(e *Engine) {
		e.keyword = keyword
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{keyword: domain.Keyword}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NeedsFlow reports whether interpreting the event requires the stored EventLog.
func NeedsFlow(ev domain.Event) bool {
	switch ev.(type) {
	case domain.MessageEvent, domain.PostbackEvent:
		return true
	}
	return false
}

// Decide maps (event, current flow state) to the next flow state and reply.
// current may be nil for join and leave events.
func (e *Engine) Decide(ev domain.Event, current *domain.EventLog) (Decision, error) {
	switch ev := ev.(type) {
	case domain.JoinEvent:
		return e.join(ev), nil
	case domain.LeaveEvent:
		return e.leave(ev), nil
	case domain.MessageEvent:
		if current == nil {
			return Decision{}, fmt.Errorf("message in group %s: %w", ev.GroupID, domain.ErrFlowNotFound)
		}
		return e.message(ev, *current), nil
	case domain.PostbackEvent:
		if current == nil {
			return Decision{}, fmt.Errorf("postback in group %s: %w", ev.GroupID, domain.ErrFlowNotFound)
		}
		return e.postback(ev, *current), nil
	default:
		return Decision{}, fmt.Errorf("%w: %T", ErrUnsupportedEvent, ev)
	}
}

func (e *Engine) join(ev domain.JoinEvent) Decision {
	return Decision{
		Group: domain.NewGroupInfo(ev.GroupID, ev.Timestamp),
		Flow:  domain.NewEventLog(ev.GroupID, ev.Timestamp),
		Reply: domain.Text(ReplyGreeting),
	}
}

func (e *Engine) leave(ev domain.LeaveEvent) Decision {
	return Decision{
		Remove: true,
		Reply:  domain.Text(ReplyFarewell),
	}
}
