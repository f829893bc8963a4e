package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Name: "x", Interval: time.Second})
	assert.Error(t, err, "tick is required")

	_, err = New(Options{Name: "x", Tick: func(context.Context) {}})
	assert.Error(t, err, "schedule or interval is required")

	p, err := New(Options{Name: "x", Interval: time.Second, Tick: func(context.Context) {}})
	require.NoError(t, err)
	assert.False(t, p.Running())
}

func TestParseSchedule(t *testing.T) {
	sched, err := ParseSchedule("@every 30s")
	require.NoError(t, err)

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(30*time.Second), sched.Next(start))

	_, err = ParseSchedule("every thirty seconds")
	assert.Error(t, err)
}

func TestEvery_SubSecond(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 500, time.UTC)
	assert.Equal(t, start.Add(20*time.Millisecond), Every(20*time.Millisecond).Next(start))
}

func TestPoller_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	p, err := New(Options{
		Name:     "test",
		Interval: 10 * time.Millisecond,
		Tick:     func(context.Context) { ticks.Add(1) },
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()), "second start is a no-op")
	assert.True(t, p.Running())

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller loop did not exit")
	}

	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks after stop")
}

func TestPoller_InFlightTickSurvivesStop(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var tickErr atomic.Value

	p, err := New(Options{
		Name:     "slow",
		Interval: 5 * time.Millisecond,
		Tick: func(ctx context.Context) {
			select {
			case entered <- struct{}{}:
			default:
				return
			}
			<-release
			if ctx.Err() != nil {
				tickErr.Store(ctx.Err())
			}
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	p.Start(context.Background())
	<-entered
	p.Stop()
	close(release)

	<-p.Done()
	assert.Nil(t, tickErr.Load(), "tick context must not be cancelled by Stop")
}

func TestPoller_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := New(Options{Name: "parent", Interval: time.Hour, Tick: func(context.Context) {}, Logger: zerolog.Nop()})
	require.NoError(t, err)

	p.Start(ctx)
	cancel()

	<-p.Done()
	require.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
	assert.True(t, p.Start(context.Background()), "poller can be restarted")
	p.Stop()
}

func TestPoller_DoneBeforeStart(t *testing.T) {
	p, err := New(Options{Name: "idle", Interval: time.Second, Tick: func(context.Context) {}})
	require.NoError(t, err)

	select {
	case <-p.Done():
	default:
		t.Fatal("Done should be closed for a poller that never started")
	}
}
