// Package notify delivers best-effort copies of committed records to the operator room.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Sender is the transport surface the notifier needs.
type Sender interface {
	SendText(ctx context.Context, room, message string) error
}

type Notifier struct {
	sender  Sender
	room    string
	timeout time.Duration
	logger  *zap.Logger

	wg sync.WaitGroup
}

func New(sender Sender, room string, timeout time.Duration, logger *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{sender: sender, room: strings.TrimSpace(room), timeout: timeout, logger: logger}
}

// Notify schedules delivery and returns immediately. Failures are logged and
// counted; they never reach the caller.
func (n *Notifier) Notify(ctx context.Context, text string) {
	if n == nil || n.sender == nil || n.room == "" || strings.TrimSpace(text) == "" {
		return
	}
	// detach from the request so a finished event does not cancel delivery
	base := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(base, n.timeout)
		defer cancel()
		if err := n.sender.SendText(sendCtx, n.room, text); err != nil {
			metrics.NotifyFailuresTotal.Inc()
			n.logger.Warn("operator_notify_failed", zap.String("room", n.room), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
