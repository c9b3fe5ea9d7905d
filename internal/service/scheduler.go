package service

import (
	"context"
	"sync"
	"time"

	"billing-engine/internal/clock"
	"billing-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Cycle states. Exactly one cycle occupies dispatching/draining at a time.
const (
	StateIdle        = "IDLE"
	StateDispatching = "DISPATCHING"
	StateDraining    = "DRAINING"
)

// BillingScheduler fires billing cycles on a cron cadence. A cycle is
// dispatch (select PENDING invoices, publish ids) followed by draining
// (wait until the queue is empty and no worker is mid-charge).
//
// Overlapping fires are skipped, never queued: if a cycle is still
// draining when the next fire arrives, that fire is dropped. A skipped
// or delayed fire can never double-charge because eligibility is always
// re-derived from current PENDING status at fire time.
type BillingScheduler struct {
	dispatcher ports.Dispatcher
	pool       *WorkerPool
	queue      ports.BillingQueue
	clk        clock.Clock
	pollEvery  time.Duration
	log        zerolog.Logger

	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex // held for the duration of one cycle
	stMu  sync.Mutex
	state string
}

// NewBillingScheduler creates a BillingScheduler. pollEvery controls how
// often a draining cycle re-checks queue depth and in-flight work.
func NewBillingScheduler(dispatcher ports.Dispatcher, pool *WorkerPool, queue ports.BillingQueue, clk clock.Clock, pollEvery time.Duration, log zerolog.Logger) *BillingScheduler {
	if pollEvery <= 0 {
		pollEvery = 250 * time.Millisecond
	}
	return &BillingScheduler{
		dispatcher: dispatcher,
		pool:       pool,
		queue:      queue,
		clk:        clk,
		pollEvery:  pollEvery,
		log:        log,
		state:      StateIdle,
	}
}

// Start registers the cron schedule and begins firing. The spec string
// uses the standard 5-field cron format, e.g. "0 3 1 * *" for 03:00 on
// the first of every month.
func (s *BillingScheduler) Start(ctx context.Context, spec string) error {
	s.baseCtx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, func() {
		if runID, ok := s.TriggerRun(); ok {
			s.log.Info().Str("run_id", runID.String()).Msg("scheduled billing cycle fired")
		} else {
			s.log.Warn().Msg("previous billing cycle still running, fire skipped")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", spec).Msg("billing scheduler started")
	return nil
}

// Stop halts the cron timer and cancels any in-flight cycle. Backoffs
// in progress are abandoned; statuses already written stay durable and
// the next cycle re-evaluates anything still PENDING.
func (s *BillingScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// State returns the current cycle state.
func (s *BillingScheduler) State() string {
	s.stMu.Lock()
	defer s.stMu.Unlock()
	return s.state
}

func (s *BillingScheduler) setState(state string) {
	s.stMu.Lock()
	s.state = state
	s.stMu.Unlock()
}

// TriggerRun starts a billing cycle unless one is already in flight.
// It returns immediately; the cycle runs in the background.
func (s *BillingScheduler) TriggerRun() (uuid.UUID, bool) {
	if !s.mu.TryLock() {
		return uuid.Nil, false
	}
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.New()
	go func() {
		defer s.mu.Unlock()
		s.runCycle(ctx, runID)
	}()
	return runID, true
}

// RunCycle runs one cycle synchronously. Used by tests and by callers
// that need completion, not just a trigger.
func (s *BillingScheduler) RunCycle(ctx context.Context) (uuid.UUID, bool) {
	if !s.mu.TryLock() {
		return uuid.Nil, false
	}
	defer s.mu.Unlock()
	runID := uuid.New()
	s.runCycle(ctx, runID)
	return runID, true
}

func (s *BillingScheduler) runCycle(ctx context.Context, runID uuid.UUID) {
	log := s.log.With().Str("run_id", runID.String()).Logger()
	start := s.clk.Now()

	s.setState(StateDispatching)
	defer s.setState(StateIdle)

	published, err := s.dispatcher.Dispatch(ctx)
	if err != nil {
		// Nothing partial is committed; the next fire tries again.
		log.Error().Err(err).Msg("billing cycle aborted")
		return
	}
	if published == 0 {
		log.Info().Msg("no pending invoices, cycle complete")
		return
	}

	s.setState(StateDraining)
	if !s.drain(ctx) {
		log.Warn().Msg("billing cycle cancelled while draining")
		return
	}

	log.Info().
		Int("published", published).
		Dur("elapsed", s.clk.Now().Sub(start)).
		Msg("billing cycle complete")
}

// drain waits until the queue is empty and no worker is mid-charge.
// A worker may sit between consuming an id and marking itself busy, so
// one idle observation is not proof of completion; two consecutive idle
// observations a poll interval apart are required.
func (s *BillingScheduler) drain(ctx context.Context) bool {
	idleStreak := 0
	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.clk.After(s.pollEvery):
		}

		depth, err := s.queue.Len(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("checking queue depth")
			idleStreak = 0
			continue
		}
		if depth == 0 && s.pool.InFlight() == 0 {
			idleStreak++
			if idleStreak >= 2 {
				return true
			}
		} else {
			idleStreak = 0
		}
	}
}
