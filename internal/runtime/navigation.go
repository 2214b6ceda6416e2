package runtime

import (
	"github.com/aretw0/grouplog/pkg/domain"
)

// message handles free text. The keyword toggles the menu; any other text is only
// meaningful while a dated record is waiting for its content.
func (e *Engine) message(ev domain.MessageEvent, current domain.EventLog) Decision {
	if ev.Text == e.keyword {
		if current.Funcs == domain.FlowIdle {
			return Decision{
				Flow:  current.Transition(domain.FlowMenu, "", ev.Timestamp),
				Reply: menuReply(),
			}
		}
		// Keyword mid-flow aborts; the member has to start over.
		return Decision{
			Flow:  current.Reset(ev.Timestamp),
			Reply: domain.Text(ReplyRestart),
		}
	}

	if current.Funcs != domain.FlowCreateRecord {
		return Decision{Flow: current.Reset(ev.Timestamp)}
	}

	if current.Date == "" {
		return Decision{
			Flow:  current.Reset(ev.Timestamp),
			Reply: domain.Text(ReplyDateMissing),
		}
	}

	return Decision{
		Record: &domain.CalendarRecord{
			GroupID:    ev.GroupID,
			UserID:     ev.UserID,
			Timestamp:  ev.Timestamp,
			RecordDate: current.Date,
			Content:    ev.Text,
		},
		Flow:  current.Reset(ev.Timestamp),
		Reply: domain.Text(ReplyRecorded),
	}
}

// postback handles menu and confirm actions.
func (e *Engine) postback(ev domain.PostbackEvent, current domain.EventLog) Decision {
	switch ev.Data {
	case domain.PostbackSelect:
		if current.Funcs != domain.FlowMenu {
			return Decision{
				Flow:  current.Reset(ev.Timestamp),
				Reply: domain.Text(ReplyWrongSelection),
			}
		}
		date := ev.Params.Date
		if date == "" {
			return Decision{
				Flow:  current.Reset(ev.Timestamp),
				Reply: domain.Text(ReplyDateMissing),
			}
		}
		return Decision{
			Flow:  current.Transition(domain.FlowCreateRecord, date, ev.Timestamp),
			Reply: domain.Text(dateChosen(date), ReplyEnterContent),
		}

	case domain.PostbackGet:
		// Read-only: the stored flow state is left as is.
		return Decision{Lookup: true}

	case domain.PostbackExit:
		return Decision{
			Flow:  current.Reset(ev.Timestamp),
			Reply: domain.Text(ReplyExited),
		}

	default:
		// Includes "next": paging through records has no transition yet.
		return Decision{Flow: current.Reset(ev.Timestamp)}
	}
}
