package chatdto

type ActionKind int

const (
	ActionSendText ActionKind = iota
	// ActionEditLast replaces the previously sent prompt. Transports that
	// cannot edit render it as a new message.
	ActionEditLast
)

func (k ActionKind) String() string {
	if k == ActionEditLast {
		return "edit_last"
	}
	return "send_text"
}

// Choice is one selectable option attached to a prompt.
type Choice struct {
	Token string
	Label string
}

// Action is one outbound reply produced by the engine.
type Action struct {
	Kind    ActionKind
	Chat    string
	Body    string
	Choices []Choice
}

func SendText(chat, body string) Action {
	return Action{Kind: ActionSendText, Chat: chat, Body: body}
}
