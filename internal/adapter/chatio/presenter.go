package chatio

import (
	"context"
	"fmt"
	"strings"

	"github.com/park285/oto-tournament-bot/internal/irisfast"
	"github.com/park285/oto-tournament-bot/internal/msgcat"
	"github.com/park285/oto-tournament-bot/internal/util"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

// Messages with more lines than this are folded behind Kakao's "see more".
const seeMoreLineThreshold = 12

// Presenter renders engine actions as Kakao text and sends them.
type Presenter struct {
	egress  irisfast.Egress
	catalog *msgcat.Catalog
	prefix  string
}

func NewPresenter(egress irisfast.Egress, catalog *msgcat.Catalog, prefix string) *Presenter {
	if catalog == nil {
		catalog = msgcat.MustDefault()
	}
	return &Presenter{egress: egress, catalog: catalog, prefix: strings.TrimSpace(prefix)}
}

// Deliver sends one action. Iris cannot edit messages, so EditLast is sent as a new message.
func (p *Presenter) Deliver(ctx context.Context, a chatdto.Action) error {
	text := p.Render(a)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return p.egress.SendText(ctx, a.Chat, text)
}

// SendText lets the presenter act as the notifier's sender.
func (p *Presenter) SendText(ctx context.Context, room, message string) error {
	return p.Deliver(ctx, chatdto.SendText(room, message))
}

func (p *Presenter) Render(a chatdto.Action) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(a.Body))
	if len(a.Choices) > 0 {
		sb.WriteString("\n")
		for _, c := range a.Choices {
			sb.WriteString(fmt.Sprintf("\n• %s: %s%s %s", c.Label, p.prefix, pickCommand, c.Token))
		}
		sb.WriteString("\n\n")
		sb.WriteString(p.catalog.Text("choice.hint", map[string]any{"Prefix": p.prefix}))
	}
	text := sb.String()
	if strings.Count(text, "\n")+1 > seeMoreLineThreshold {
		header, _, _ := strings.Cut(text, "\n")
		text = util.ApplySeeMoreWithHeader(text, header, header, "")
	}
	return text
}
