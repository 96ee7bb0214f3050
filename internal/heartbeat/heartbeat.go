// Package heartbeat runs the bot's periodic background jobs: the liveness
// message to the operator room and expiry sweeps of in-memory sessions.
package heartbeat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/metrics"
)

const defaultSendTimeout = 10 * time.Second

type Sender interface {
	SendText(ctx context.Context, room, message string) error
}

type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Config struct {
	Room     string
	Message  string
	Interval time.Duration // 0 disables the liveness job
	// SweepInterval applies only when a sweeper is given.
	SweepInterval time.Duration
	SendTimeout   time.Duration
}

type Service struct {
	cfg     Config
	sender  Sender
	sweeper Sweeper
	logger  *zap.Logger
	sched   gocron.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the jobs without starting them. sweeper may be nil.
func New(cfg Config, sender Sender, sweeper Sweeper, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.Interval > 0 && (sender == nil || strings.TrimSpace(cfg.Room) == "") {
		return nil, errors.New("heartbeat: sender and room are required")
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{cfg: cfg, sender: sender, sweeper: sweeper, logger: logger, sched: sched, ctx: ctx, cancel: cancel}

	if cfg.Interval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(func() { _ = s.Beat(s.ctx) }),
			gocron.WithName("heartbeat"),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			return nil, err
		}
	}
	if sweeper != nil && cfg.SweepInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.SweepInterval),
			gocron.NewTask(func() { s.sweep(s.ctx) }),
			gocron.WithName("session_sweep"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) Start() {
	s.sched.Start()
	s.logger.Info("heartbeat_started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("sweep_interval", s.cfg.SweepInterval),
	)
}

// Stop cancels in-flight sends and waits for running jobs.
func (s *Service) Stop() error {
	s.cancel()
	return s.sched.Shutdown()
}

// Beat sends one liveness message. Failures are counted and logged, never retried.
func (s *Service) Beat(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	if err := s.sender.SendText(ctx, s.cfg.Room, s.cfg.Message); err != nil {
		metrics.HeartbeatsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Warn("heartbeat_failed", zap.String("room", s.cfg.Room), zap.Error(err))
		return err
	}
	metrics.HeartbeatsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	s.logger.Debug("heartbeat_sent", zap.String("room", s.cfg.Room))
	return nil
}

func (s *Service) sweep(ctx context.Context) {
	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Warn("session_sweep_failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("session_sweep", zap.Int("expired", n))
	}
}
