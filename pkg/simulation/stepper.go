package simulation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tochemey/goakt/v3/log"
)

// Stepable is anything that advances by one discrete tick.
type Stepable interface {
	Step()
}

// StepFunc is called after every background step with the time the step took.
// It runs on the stepper goroutine and must not call Start or Stop. ctx is
// cancelled as soon as Stop is called, so waits inside the callback should
// select on it.
type StepFunc func(ctx context.Context, elapsed time.Duration)

// Stepper runs Step in a loop on a single background goroutine.
//
// The loop has no delay of its own: pacing belongs to the StepFunc or to the
// render loop. Stop blocks until the goroutine has exited, so once it returns
// no further StepFunc call can happen.
type Stepper struct {
	target Stepable
	logger log.Logger

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	running atomic.Bool

	stepCount int
	stepTotal time.Duration
	lastLog   time.Time
}

// NewStepper creates an idle stepper for target. A nil logger discards output.
func NewStepper(target Stepable, logger log.Logger) *Stepper {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Stepper{target: target, logger: logger}
}

// Start launches the loop and reports whether it did; it is a no-op when
// already running. The loop also ends when ctx is cancelled.
func (s *Stepper) Start(ctx context.Context, onStep StepFunc) bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.running.Load() {
		return false
	}
	if s.done != nil {
		// previous loop ended through ctx; make sure it is gone
		<-s.done
		s.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)
	s.stepCount, s.stepTotal, s.lastLog = 0, 0, time.Now()
	go s.loop(loopCtx, onStep, s.done)

	s.logger.Info("stepper started")
	return true
}

// Stop asks the loop to exit after its current iteration and waits for it.
// It is a no-op when idle.
func (s *Stepper) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
	s.logger.Info("stepper stopped")
}

// IsRunning reports whether the loop is active. It never blocks.
func (s *Stepper) IsRunning() bool {
	return s.running.Load()
}

// Step advances the target once, only while the loop is idle.
func (s *Stepper) Step() bool {
	if s.running.Load() {
		return false
	}
	s.target.Step()
	return true
}

func (s *Stepper) loop(ctx context.Context, onStep StepFunc, done chan struct{}) {
	defer close(done)
	defer s.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		s.target.Step()
		elapsed := time.Since(start)

		s.logRate(elapsed)
		if onStep != nil {
			onStep(ctx, elapsed)
		}
	}
}

// logRate emits one debug line per second with the step rate.
func (s *Stepper) logRate(elapsed time.Duration) {
	s.stepCount++
	s.stepTotal += elapsed
	if time.Since(s.lastLog) < time.Second {
		return
	}
	s.logger.Debugf("step rate: %d/sec, avg %s", s.stepCount, s.stepTotal/time.Duration(s.stepCount))
	s.stepCount = 0
	s.stepTotal = 0
	s.lastLog = time.Now()
}
