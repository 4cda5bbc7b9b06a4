package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
)

// SweepRunner is the unit of work the scheduler drives. *Reconciler is the
// production implementation.
type SweepRunner interface {
	Sweep(ctx context.Context) error
}

// WakeSubscriber delivers external wake events (a client returning to the
// foreground). Subscribe returns an unsubscribe func released on Stop.
type WakeSubscriber interface {
	Subscribe(handler func()) (func(), error)
}

type SchedulerStatus struct {
	Running      bool
	Interval     time.Duration
	PassInFlight bool
}

// Scheduler drives the reconciler on a fixed cadence and on wake events. At
// most one pass runs at a time within the process; a pass requested while one
// is in flight is dropped, not queued. The next tick retries any unfinished
// work because the sweep is idempotent.
type Scheduler struct {
	runner SweepRunner
	wake   WakeSubscriber
	cfg    config.ExpirationConfig
	log    logger.Logger

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	inFlight atomic.Bool
	lastWake atomic.Int64
	wakeCh   chan struct{}
}

func NewScheduler(runner SweepRunner, wake WakeSubscriber, cfg config.ExpirationConfig, log logger.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		wake:   wake,
		cfg:    cfg,
		log:    log,
		wakeCh: make(chan struct{}, 1),
	}
}

// Start is idempotent: a second call while running is a no-op. The first pass
// runs after the initial delay so a fresh process does not immediately rework
// state another instance may still be settling.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Debug("Scheduler already running, ignoring Start")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	if s.wake != nil {
		unsubscribe, err := s.wake.Subscribe(s.requestWake)
		if err != nil {
			cancel()
			return err
		}
		s.unsubscribe = unsubscribe
	}

	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.run(ctx)

	s.log.Infof("Scheduler started: interval=%s initial_delay=%s wake_debounce=%s",
		s.cfg.PollInterval, s.cfg.InitialDelay, s.cfg.WakeDebounce)
	return nil
}

// Stop is idempotent and safe to call when not running. Future ticks are
// cancelled and the wake subscription released; an in-flight sweep is allowed
// to finish before Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return SchedulerStatus{
		Running:      running,
		Interval:     s.cfg.PollInterval,
		PassInFlight: s.inFlight.Load(),
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	initial := time.NewTimer(s.cfg.InitialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
	}
	s.runPass()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPass()
		case <-s.wakeCh:
			s.runPass()
		}
	}
}

// requestWake is called from the wake subscription. Wakes inside the debounce
// window are dropped; otherwise one pass request is queued (at most one
// pending).
func (s *Scheduler) requestWake() {
	now := time.Now()
	last := time.Unix(0, s.lastWake.Load())
	if now.Sub(last) < s.cfg.WakeDebounce {
		return
	}
	s.lastWake.Store(now.UnixNano())

	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// runPass executes one sweep unless one is already in flight. Sweeps run on a
// background context: Stop cancels scheduling, not work already started. A
// panic or error inside the sweep is contained here; the timer keeps running.
func (s *Scheduler) runPass() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug("Pass already in flight, dropping request")
		return
	}
	defer s.inFlight.Store(false)
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Errorf("Panic during reconciliation pass: %v", rec)
		}
	}()

	if err := s.runner.Sweep(context.Background()); err != nil {
		s.log.Errorf("Reconciliation pass failed: %v", err)
	}
}
