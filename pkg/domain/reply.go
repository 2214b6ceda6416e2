package domain

// Reply is an abstract outbound message set. The concrete type is one of
// TextReply, MenuReply or ConfirmReply. A nil Reply means "stay silent".
type Reply interface {
	isReply()
}

// OptionKind distinguishes the actions a menu or confirm option triggers.
type OptionKind string

const (
	OptionPostback   OptionKind = "postback"
	OptionDatePicker OptionKind = "date_picker"
)

// Option is a selectable action attached to a reply.
type Option struct {
	Kind  OptionKind
	Label string
	Data  string
}

// TextReply sends each entry as a separate plain text message.
type TextReply struct {
	Texts []string
}

// MenuReply sends a single text with quick-reply options.
type MenuReply struct {
	Text    string
	Options []Option
}

// ConfirmReply sends a confirmation template with up to two actions.
type ConfirmReply struct {
	AltText string
	Text    string
	Actions []Option
}

func (TextReply) isReply()    {}
func (MenuReply) isReply()    {}
func (ConfirmReply) isReply() {}

// Text builds a TextReply from one or more messages.
func Text(texts ...string) TextReply {
	return TextReply{Texts: texts}
}
