package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/testutil"
)

func TestPeriodicTask_StartStop(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	var runs atomic.Int64
	task := newPeriodicTask(time.Millisecond, func() { runs.Add(1) })

	assert.False(t, task.Stop(), "stop before start")
	assert.True(t, task.Start())
	assert.False(t, task.Start(), "already running")
	assert.True(t, task.Running())

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	assert.True(t, task.Stop())
	task.Wait()
	assert.False(t, task.Running())

	after := runs.Load()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestPeriodicTask_StopFromCallback(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	var task *periodicTask
	var runs atomic.Int64
	task = newPeriodicTask(time.Millisecond, func() {
		runs.Add(1)
		task.Stop()
	})

	task.Start()
	require.Eventually(t, func() bool { return !task.Running() }, time.Second, time.Millisecond)
	task.Wait()
	assert.Equal(t, int64(1), runs.Load())
}

func TestPeriodicTask_RestartJoinsAllRuns(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	task := newPeriodicTask(time.Millisecond, func() {})
	for range 10 {
		task.Start()
		task.Stop()
	}
	task.Wait()
}
