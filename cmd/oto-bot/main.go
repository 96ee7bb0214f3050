package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/adapter/chatio"
	appcfg "github.com/park285/oto-tournament-bot/internal/config"
	"github.com/park285/oto-tournament-bot/internal/conversation"
	"github.com/park285/oto-tournament-bot/internal/dispatch"
	"github.com/park285/oto-tournament-bot/internal/heartbeat"
	"github.com/park285/oto-tournament-bot/internal/irisfast"
	"github.com/park285/oto-tournament-bot/internal/msgcat"
	"github.com/park285/oto-tournament-bot/internal/notify"
	"github.com/park285/oto-tournament-bot/internal/obslog"
	"github.com/park285/oto-tournament-bot/internal/opsserver"
	"github.com/park285/oto-tournament-bot/internal/session"
	"github.com/park285/oto-tournament-bot/internal/store"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Printf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("catalog_error", zap.Error(err))
	}

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}

	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetLogger(obslog.Named("iris_ws"))
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", string(state)))
	})

	egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryrun, client, ws, obslog.Named("egress"))
	presenter := chatio.NewPresenter(egress, catalog, cfg.BotPrefix)

	startCtx, startCancel := context.WithTimeout(context.Background(), startupTimeout)
	st, err := openStore(startCtx, cfg, logger)
	if err != nil {
		startCancel()
		logger.Fatal("store_init_error", zap.Error(err))
	}
	sessions, sweeper, err := openSessions(startCtx, cfg)
	startCancel()
	if err != nil {
		logger.Fatal("session_registry_init_error", zap.Error(err))
	}

	notifier := notify.New(presenter, cfg.OperatorRoom, cfg.NotifyTimeout, obslog.Named("notify"))
	engine := conversation.New(st, sessions, notifier, catalog, conversation.Config{
		Prefix:        cfg.BotPrefix,
		Admins:        cfg.AdminIDs,
		CommitTimeout: cfg.CommitTimeout,
		RecentLimit:   cfg.RecentTournamentsLimit,
	}, obslog.Named("conversation"))
	dispatcher := dispatch.New(engine, presenter, cfg.EventTimeout, obslog.Named("dispatch"))

	parser := chatio.NewParser(cfg.BotPrefix, cfg.AllowedRooms)
	ws.OnMessage(func(msg *irisfast.Message) {
		ev, ok := parser.Parse(msg)
		if !ok {
			return
		}
		if err := dispatcher.Submit(ev); err != nil {
			logger.Warn("event_dropped", zap.String("room", ev.Chat), zap.Error(err))
		}
	})

	message := cfg.HeartbeatMessage
	if message == "" {
		message = catalog.Text("heartbeat.alive", nil)
	}
	beats, err := heartbeat.New(heartbeat.Config{
		Room:          cfg.OperatorRoom,
		Message:       message,
		Interval:      cfg.HeartbeatInterval,
		SweepInterval: sweepInterval,
		SendTimeout:   cfg.NotifyTimeout,
	}, presenter, sweeper, obslog.Named("heartbeat"))
	if err != nil {
		logger.Fatal("heartbeat_init_error", zap.Error(err))
	}

	var ops *opsserver.Server
	if cfg.OpsAddr != "" {
		checks := map[string]opsserver.Pinger{"store": st}
		if p, ok := sessions.(opsserver.Pinger); ok {
			checks["sessions"] = p
		}
		ops = opsserver.New(cfg.OpsAddr, checks, obslog.Named("ops"))
		go func() {
			if err := ops.Start(); err != nil {
				logger.Error("ops_server_error", zap.Error(err))
			}
		}()
	}

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		logger.Fatal("ws_connect_error", zap.Error(err))
	}
	cancel()

	beats.Start()
	logger.Info("bot_started",
		zap.String("prefix", cfg.BotPrefix),
		zap.String("store", cfg.StoreDriver),
		zap.Bool("redis_sessions", cfg.RedisURL != ""),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown", zap.String("signal", sig.String()))

	ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	_ = ws.Close(ctx)
	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn("dispatcher_close", zap.Error(err))
	}
	if err := beats.Stop(); err != nil {
		logger.Warn("heartbeat_stop", zap.Error(err))
	}
	if err := notifier.Wait(ctx); err != nil {
		logger.Warn("notify_drain", zap.Error(err))
	}
	if ops != nil {
		_ = ops.Shutdown(ctx)
	}
	if c, ok := sessions.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	_ = st.Close()
}

func openStore(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case appcfg.StoreDriverMemory:
		logger.Warn("memory_store", zap.String("note", "records are lost on restart"))
		return store.NewMemory(), nil
	case appcfg.StoreDriverPostgres:
		return store.OpenPostgres(ctx, cfg.DatabaseURL, obslog.Named("store"))
	default:
		return nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}

// openSessions returns a sweeper only for the in-memory registry; Redis expires keys itself.
func openSessions(ctx context.Context, cfg *appcfg.AppConfig) (session.Registry, heartbeat.Sweeper, error) {
	if cfg.RedisURL == "" {
		m := session.NewMemory(cfg.SessionTTL)
		return m, m, nil
	}
	r, err := session.OpenRedis(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	return r, nil, nil
}
