package service

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedulerConfig() config.ExpirationConfig {
	return config.ExpirationConfig{
		PollInterval: time.Hour,
		InitialDelay: 10 * time.Millisecond,
		WakeDebounce: time.Hour,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, schedulerConfig(), &logger.NoOpLogger{})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.Status().Running)

	s.Stop()
	s.Stop()
	assert.False(t, s.Status().Running)

	// Stop before Start is also safe.
	fresh := NewScheduler(runner, nil, schedulerConfig(), &logger.NoOpLogger{})
	fresh.Stop()
}

func TestSchedulerRunsFirstPassAfterInitialDelay(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, schedulerConfig(), &logger.NoOpLogger{})

	require.NoError(t, s.Start())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return runner.Count() == 1 })
}

func TestSchedulerStatus(t *testing.T) {
	cfg := schedulerConfig()
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, cfg, &logger.NoOpLogger{})

	status := s.Status()
	assert.False(t, status.Running)
	assert.Equal(t, cfg.PollInterval, status.Interval)
	assert.False(t, status.PassInFlight)
}

func TestSchedulerDropsOverlappingPass(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s := NewScheduler(runner, nil, schedulerConfig(), &logger.NoOpLogger{})

	go s.runPass()
	waitFor(t, time.Second, func() bool { return s.Status().PassInFlight })

	// Requested while one is in flight: dropped, not queued.
	s.runPass()
	assert.Equal(t, 1, runner.Count())

	close(runner.block)
	waitFor(t, time.Second, func() bool { return !s.Status().PassInFlight })
	assert.Equal(t, 1, runner.Count())
}

func TestSchedulerWakeTriggersPass(t *testing.T) {
	runner := &countingRunner{}
	wake := &fakeWake{}
	s := NewScheduler(runner, wake, schedulerConfig(), &logger.NoOpLogger{})

	require.NoError(t, s.Start())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return runner.Count() == 1 })

	wake.Fire()
	waitFor(t, time.Second, func() bool { return runner.Count() == 2 })

	// Second wake inside the debounce window is dropped.
	wake.Fire()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, runner.Count())
}

func TestSchedulerStopReleasesWakeSubscription(t *testing.T) {
	runner := &countingRunner{}
	wake := &fakeWake{}
	s := NewScheduler(runner, wake, schedulerConfig(), &logger.NoOpLogger{})

	require.NoError(t, s.Start())
	s.Stop()

	wake.mu.Lock()
	unsubscribed := wake.unsubscribed
	wake.mu.Unlock()
	assert.Equal(t, 1, unsubscribed)
}

func TestSchedulerPanicInPassIsContained(t *testing.T) {
	s := NewScheduler(panickyRunner{}, nil, schedulerConfig(), &logger.NoOpLogger{})

	assert.NotPanics(t, func() { s.runPass() })
	assert.False(t, s.Status().PassInFlight)
}

type panickyRunner struct{}

func (panickyRunner) Sweep(ctx context.Context) error {
	panic("boom")
}
