// Package poller runs a function on a recurring schedule until stopped.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shiftly/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// specParser accepts standard 5-field expressions and descriptors such as "@every 30s".
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a cron spec or descriptor
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("poller: parse schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Every returns a schedule firing at a fixed delay. Unlike cron.Every it
// keeps sub-second precision.
func Every(d time.Duration) cron.Schedule {
	return fixedDelay(d)
}

type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// TickFunc is invoked on every wake-up. Its context is not cancelled by
// Stop, so a call already in flight runs to completion.
type TickFunc func(ctx context.Context)

// Options holds parameters for creating a Poller.
type Options struct {
	Name     string
	Schedule cron.Schedule // takes precedence over Interval
	Interval time.Duration
	Tick     TickFunc
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
}

// Poller owns one recurring task. Start and Stop may be called from any
// goroutine.
type Poller struct {
	name     string
	schedule cron.Schedule
	tick     TickFunc
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Poller.
func New(opts Options) (*Poller, error) {
	if opts.Tick == nil {
		return nil, fmt.Errorf("poller: tick func is required")
	}
	sched := opts.Schedule
	if sched == nil {
		if opts.Interval <= 0 {
			return nil, fmt.Errorf("poller: %s: schedule or interval is required", opts.Name)
		}
		sched = Every(opts.Interval)
	}
	return &Poller{
		name:     opts.Name,
		schedule: sched,
		tick:     opts.Tick,
		logger:   opts.Logger.With().Str("poller", opts.Name).Logger(),
		metrics:  opts.Metrics,
	}, nil
}

// Start launches the loop. It returns false if the loop is already running.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.run(loopCtx, cancel, done)
	p.logger.Debug().Msg("Poller started")
	return true
}

// Stop cancels the loop. It does not wait for an in-flight tick.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.logger.Debug().Msg("Poller stopped")
}

// Running reports whether the loop has been started and not stopped
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Done returns a channel closed once the most recently started loop exits
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return p.done
}

func (p *Poller) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer func() {
		// The parent context may end the loop without Stop being called.
		p.mu.Lock()
		if p.done == done && p.cancel != nil {
			p.cancel = nil
		}
		p.mu.Unlock()
		cancel()
	}()

	for {
		now := time.Now()
		timer := time.NewTimer(p.schedule.Next(now).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if ctx.Err() != nil {
			return
		}
		p.metrics.ObservePollTick(p.name)
		p.tick(context.WithoutCancel(ctx))
	}
}
