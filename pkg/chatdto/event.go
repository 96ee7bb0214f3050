package chatdto

import "strings"

type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventChoice
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventChoice:
		return "choice"
	default:
		return "text"
	}
}

// Event is one inbound chat input after transport parsing.
type Event struct {
	Kind EventKind
	// Name is the command name without prefix, lower-cased. Command only.
	Name string
	// Args holds the command arguments. Command only.
	Args []string
	// Token is the selected option. Choice only.
	Token string
	// Body is the raw message text.
	Body string

	Sender string
	Chat   string
	Handle string
}

// SessionKey identifies the conversation the event belongs to.
func (e Event) SessionKey() string {
	return SessionKey(e.Chat, e.Sender)
}

// SessionKey joins chat and sender; the separator cannot appear in either id.
func SessionKey(chat, sender string) string {
	return strings.TrimSpace(chat) + "\x1f" + strings.TrimSpace(sender)
}

func NewCommand(chat, sender, name string, args ...string) Event {
	return Event{Kind: EventCommand, Chat: chat, Sender: sender, Name: strings.ToLower(name), Args: args}
}

func NewChoice(chat, sender, token string) Event {
	return Event{Kind: EventChoice, Chat: chat, Sender: sender, Token: token}
}

func NewText(chat, sender, body string) Event {
	return Event{Kind: EventText, Chat: chat, Sender: sender, Body: body}
}
