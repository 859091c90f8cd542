package timer_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/ptrack/internal/timer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ticks(e *timer.Engine, n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

func TestEngine_FullCountdownFiresOnce(t *testing.T) {
	e := timer.New()
	fired := 0
	e.Start(45, func() { fired++ })

	ticks(e, 44)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, e.Snapshot().Remaining)

	e.Tick()
	snap := e.Snapshot()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, timer.StateExpired, snap.State)
	assert.False(t, snap.IsRunning())

	ticks(e, 10)
	assert.Equal(t, 1, fired, "expired engine must not fire again")
	assert.Equal(t, 0, e.Snapshot().Remaining)
}

func TestEngine_PauseResumeKeepsRemaining(t *testing.T) {
	e := timer.New()
	e.Start(45, nil)
	ticks(e, 10)
	e.Pause()
	require.Equal(t, timer.StatePaused, e.Snapshot().State)

	ticks(e, 5)
	assert.Equal(t, 35, e.Snapshot().Remaining, "paused engine ignores ticks")

	e.Resume()
	snap := e.Snapshot()
	assert.Equal(t, timer.StateRunning, snap.State)
	assert.Equal(t, 35, snap.Remaining)
	assert.Equal(t, 45, snap.Total)
}

func TestEngine_NoOpTransitions(t *testing.T) {
	e := timer.New()
	e.Pause()
	e.Resume()
	e.Restart()
	assert.Equal(t, timer.StateIdle, e.Snapshot().State)

	e.Start(3, nil)
	e.Resume()
	assert.Equal(t, timer.StateRunning, e.Snapshot().State)

	ticks(e, 3)
	e.Resume()
	assert.Equal(t, timer.StateExpired, e.Snapshot().State, "resume needs remaining time")
}

func TestEngine_ResetCancelsCompletion(t *testing.T) {
	e := timer.New()
	fired := 0
	e.Start(2, func() { fired++ })
	e.Tick()
	e.Reset()
	ticks(e, 5)

	snap := e.Snapshot()
	assert.Equal(t, 0, fired)
	assert.Equal(t, timer.StateIdle, snap.State)
	assert.Equal(t, 0, snap.Total)
	assert.Equal(t, 0, snap.Remaining)
}

func TestEngine_StartRearmsOverRunning(t *testing.T) {
	e := timer.New()
	first, second := 0, 0
	e.Start(5, func() { first++ })
	ticks(e, 3)
	e.Start(2, func() { second++ })
	ticks(e, 5)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestEngine_RestartUsesLastTotal(t *testing.T) {
	e := timer.New()
	fired := 0
	e.Start(3, func() { fired++ })
	ticks(e, 3)
	require.Equal(t, 1, fired)

	e.Restart()
	snap := e.Snapshot()
	assert.Equal(t, timer.StateRunning, snap.State)
	assert.Equal(t, 3, snap.Remaining)

	ticks(e, 3)
	assert.Equal(t, 2, fired, "each arming completes once")
}

func TestEngine_NonPositiveTotalExpiresImmediately(t *testing.T) {
	e := timer.New()
	fired := 0
	e.Start(0, func() { fired++ })
	assert.Equal(t, 1, fired)
	assert.Equal(t, timer.StateExpired, e.Snapshot().State)
	e.Tick()
	assert.Equal(t, 1, fired)
}

func TestEngine_GenerationChangesOnArming(t *testing.T) {
	e := timer.New()
	g0 := e.Generation()
	e.Start(10, nil)
	g1 := e.Generation()
	e.Pause()
	e.Resume()
	assert.Equal(t, g1, e.Generation())
	e.Restart()
	g2 := e.Generation()
	e.Reset()
	g3 := e.Generation()
	assert.True(t, g0 < g1 && g1 < g2 && g2 < g3)
}

func TestEngine_ListenerSeesTransitions(t *testing.T) {
	e := timer.New()
	var seq []timer.State
	e.AddListener(func(_, next timer.State) { seq = append(seq, next) })
	e.Start(1, nil)
	e.Tick()
	e.Reset()
	assert.Equal(t, []timer.State{timer.StateRunning, timer.StateExpired, timer.StateIdle}, seq)
}

func TestDrive_StopsWithContext(t *testing.T) {
	e := timer.New()
	var fired atomic.Int32
	done := make(chan struct{})
	e.Start(2, func() {
		fired.Add(1)
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		timer.Drive(ctx, e, time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not complete")
	}
	cancel()
	wg.Wait()

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, timer.StateExpired, e.Snapshot().State)
}

func TestDrive_PauseStopsProgress(t *testing.T) {
	e := timer.New()
	e.Start(1000, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timer.Drive(ctx, e, time.Millisecond)

	require.Eventually(t, func() bool { return e.Snapshot().Remaining < 1000 }, time.Second, time.Millisecond)
	e.Pause()
	frozen := e.Snapshot().Remaining
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, e.Snapshot().Remaining)
	cancel()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", timer.StateRunning.String())
	assert.Equal(t, "unknown", timer.State(42).String())
}
