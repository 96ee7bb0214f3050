package chatio

import (
	"strings"

	"github.com/park285/oto-tournament-bot/internal/irisfast"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

const pickCommand = "pick"

// Parser turns Iris messages into engine events.
type Parser struct {
	prefix  string
	allowed map[string]struct{}
}

// NewParser builds a parser. An empty allow-list admits every room.
func NewParser(prefix string, allowedRooms []string) *Parser {
	p := &Parser{prefix: strings.TrimSpace(prefix)}
	if len(allowedRooms) > 0 {
		p.allowed = make(map[string]struct{}, len(allowedRooms))
		for _, r := range allowedRooms {
			if r = strings.TrimSpace(r); r != "" {
				p.allowed[r] = struct{}{}
			}
		}
	}
	return p
}

func (p *Parser) RoomAllowed(room string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	_, ok := p.allowed[strings.TrimSpace(room)]
	return ok
}

// Parse returns false for messages the bot should ignore.
func (p *Parser) Parse(msg *irisfast.Message) (chatdto.Event, bool) {
	if msg == nil || strings.TrimSpace(msg.Msg) == "" || strings.TrimSpace(msg.Room) == "" {
		return chatdto.Event{}, false
	}
	if !p.RoomAllowed(msg.Room) {
		return chatdto.Event{}, false
	}
	sender := userID(msg)
	if sender == "" {
		return chatdto.Event{}, false
	}

	text := strings.TrimSpace(msg.Msg)
	ev := chatdto.NewText(msg.Room, sender, text)
	ev.Handle = displayName(msg)

	raw, isCommand := strings.CutPrefix(text, p.prefix)
	if !isCommand || p.prefix == "" {
		return ev, true
	}
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return ev, true
	}

	name := strings.ToLower(parts[0])
	if name == pickCommand && len(parts) >= 2 {
		choice := chatdto.NewChoice(msg.Room, sender, parts[1])
		choice.Body = text
		choice.Handle = ev.Handle
		return choice, true
	}
	cmd := chatdto.NewCommand(msg.Room, sender, name, parts[1:]...)
	cmd.Body = text
	cmd.Handle = ev.Handle
	return cmd, true
}

func userID(msg *irisfast.Message) string {
	if msg.JSON != nil && strings.TrimSpace(msg.JSON.UserID) != "" {
		return strings.TrimSpace(msg.JSON.UserID)
	}
	if msg.Sender != nil {
		return strings.TrimSpace(*msg.Sender)
	}
	return ""
}

func displayName(msg *irisfast.Message) string {
	if msg.Sender != nil {
		return strings.TrimSpace(*msg.Sender)
	}
	return ""
}
