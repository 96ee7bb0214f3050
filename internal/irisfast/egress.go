package irisfast

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Egress sends text replies over HTTP or WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
}

type transportMode string

const (
	transportHTTP transportMode = "http"
	transportWS   transportMode = "ws"
	transportAuto transportMode = "auto"
)

var errWSNotConnected = errors.New("ws not connected")

// NewEgress creates an Egress based on mode. When mode is auto, WS is preferred when connected;
// on WS failure, it falls back to HTTP once. Unknown modes use HTTP.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket, logger *zap.Logger) Egress {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out Egress
	switch transportMode(strings.ToLower(strings.TrimSpace(mode))) {
	case transportWS:
		out = &wsEgress{ws: ws}
	case transportAuto:
		out = &autoEgress{ws: &wsEgress{ws: ws}, http: &httpEgress{c: c}, logger: logger}
	default:
		out = &httpEgress{c: c}
	}
	if dryrun {
		return &dryrunEgress{logger: logger}
	}
	return out
}

// httpEgress delegates to Client.
type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

// wsEgress writes ReplyRequest frames over WebSocket.
type wsEgress struct {
	ws *WebSocket
}

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	if w == nil || w.ws == nil {
		return errors.New("ws egress not available")
	}
	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return w.ws.WriteJSON(dctx, &ReplyRequest{Type: "text", Room: room, Data: message})
}

// autoEgress prefers WS if available, with single fallback to HTTP.
type autoEgress struct {
	ws     *wsEgress
	http   *httpEgress
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws != nil && a.ws.ws != nil && a.ws.ws.State() == WSStateConnected {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

// dryrunEgress logs instead of sending.
type dryrunEgress struct{ logger *zap.Logger }

func (d *dryrunEgress) SendText(ctx context.Context, room, message string) error {
	d.logger.Info("egress_dryrun", zap.String("room", room), zap.Int("len", len(message)))
	return nil
}
