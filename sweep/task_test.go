package sweep

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peregrinescode/keithley2614B/logger"
)

func TestTaskManagerStartStop(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())

	var ticks atomic.Int32
	mgr.Start("ticker", func() bool {
		ticks.Add(1)
		time.Sleep(time.Millisecond)
		return true
	})

	require.Eventually(func() bool { return ticks.Load() > 2 }, time.Second, 5*time.Millisecond)
	require.Equal(int32(1), mgr.TaskCount())

	mgr.Stop()
	mgr.Wait()
	require.Equal(int32(0), mgr.TaskCount())
}

func TestTaskManagerStartOnce(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())

	var runs atomic.Int32
	mgr.StartOnce("once", func() { runs.Add(1) })

	mgr.Wait()
	require.Equal(int32(1), runs.Load())
	require.Equal(int32(0), mgr.TaskCount())
}

func TestTaskManagerTaskStopsItself(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())

	var runs atomic.Int32
	mgr.Start("three", func() bool {
		return runs.Add(1) < 3
	})

	mgr.Wait()
	require.Equal(int32(3), runs.Load())
}

func TestTaskManagerPanicRecovery(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())

	var runs atomic.Int32
	mgr.Start("panicky", func() bool {
		runs.Add(1)
		panic("boom")
	})

	// a panicking task is stopped, not restarted, and does not kill the process
	mgr.Wait()
	require.Equal(int32(1), runs.Load())
	require.Equal(int32(0), mgr.TaskCount())
}
