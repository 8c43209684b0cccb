// Package core drives a toast's progress bar through a fixed number of
// steps on a timer. The CLI and the demo UI use it to animate live toasts.
package core

import (
	"context"
	"sync"
	"time"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseRunning:
		return "RUNNING"
	case PhasePaused:
		return "PAUSED"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type Config struct {
	Steps    int
	Interval time.Duration
}

type State struct {
	Phase     Phase
	Step      int
	Steps     int
	StartedAt time.Time
	NextAt    time.Time
}

// Fraction is the completed share in [0, 1].
func (s State) Fraction() float64 {
	if s.Steps <= 0 {
		return 0
	}
	return float64(s.Step) / float64(s.Steps)
}

type Engine struct {
	mu     sync.RWMutex
	cfg    Config
	state  State
	clock  Clock
	cancel context.CancelFunc
	// time left until the next step while paused
	remain time.Duration

	onAdvance func(State)
}

func New(cfg Config) *Engine {
	if cfg.Steps <= 0 {
		cfg.Steps = 1
	}
	return &Engine{
		cfg:   cfg,
		clock: realClock{},
		state: State{Phase: PhaseIdle, Steps: cfg.Steps},
	}
}

// SetOnAdvance registers fn, called from a new goroutine after every step.
func (e *Engine) SetOnAdvance(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onAdvance = fn
}

// State returns a snapshot.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	e.state = State{
		Phase:     PhaseRunning,
		Steps:     e.cfg.Steps,
		StartedAt: now,
		NextAt:    now.Add(e.cfg.Interval),
	}
	e.spawnLocked()
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase != PhaseRunning {
		return
	}
	e.stopLocked()
	e.remain = max(e.state.NextAt.Sub(e.clock.Now()), 0)
	e.state.Phase = PhasePaused
}

func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase != PhasePaused {
		return
	}
	e.state.Phase = PhaseRunning
	e.state.NextAt = e.clock.Now().Add(e.remain)
	e.spawnLocked()
}

// Stop cancels the run and resets to idle.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.state = State{Phase: PhaseIdle, Steps: e.cfg.Steps}
	if e.onAdvance != nil {
		e.onAdvance(e.state)
	}
}

func (e *Engine) spawnLocked() {
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	wait := e.state.NextAt.Sub(e.clock.Now())
	go func() {
		select {
		case <-e.clock.After(wait):
			e.advance(ctx)
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) advance(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// lost the race against Pause or Stop
	if ctx.Err() != nil {
		return
	}

	e.state.Step++
	if e.state.Step >= e.state.Steps {
		e.state.Phase = PhaseDone
		e.state.NextAt = time.Time{}
		e.stopLocked()
	} else {
		e.state.NextAt = e.clock.Now().Add(e.cfg.Interval)
		e.spawnLocked()
	}

	if e.onAdvance != nil {
		go e.onAdvance(e.state)
	}
}

// Remaining is the time left until the last step.
func (e *Engine) Remaining() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	left := time.Duration(e.state.Steps-e.state.Step-1) * e.cfg.Interval
	switch e.state.Phase {
	case PhaseRunning:
		return max(e.state.NextAt.Sub(e.clock.Now()), 0) + left
	case PhasePaused:
		return e.remain + left
	case PhaseIdle:
		return time.Duration(e.cfg.Steps) * e.cfg.Interval
	default:
		return 0
	}
}
