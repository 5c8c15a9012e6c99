package sweep

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/peregrinescode/keithley2614B/logger"
)

// TaskFunc is a looped task body managed by the TaskManager. It returns true
// to keep running, false to stop the goroutine.
type TaskFunc func() bool

// TaskManager manages the lifecycle of the engine's background goroutines.
// It provides a structured way to start, stop and wait for tasks, ensuring
// cancellation and cleanup happen exactly once.
//
// When the manager's context is canceled, all running tasks are signaled to
// stop; Wait blocks until every task goroutine has terminated.
type TaskManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
}

// NewTaskManager creates a TaskManager with the given parent context.
func NewTaskManager(ctx context.Context, l logger.Logger) *TaskManager {
	mgr := &TaskManager{logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the manager's context. Tasks should honor it in their own
// blocking waits.
func (mgr *TaskManager) Context() context.Context {
	return mgr.ctx
}

// Start runs taskFunc in a loop on a new goroutine until it returns false or
// the manager is stopped.
func (mgr *TaskManager) Start(name string, taskFunc TaskFunc) {
	mgr.logger.Debug("start task", "name", name)
	mgr.wg.Add(1)
	mgr.count.Add(1)

	go func() {
		defer mgr.wg.Done()
		defer mgr.count.Add(-1)
		defer mgr.logger.Debug("task terminated", "name", name)

		for {
			select {
			case <-mgr.ctx.Done():
				return
			default:
				if !mgr.callWithRecover(name, taskFunc) {
					return
				}
			}
		}
	}()
}

// StartOnce runs fn exactly once on a new goroutine.
func (mgr *TaskManager) StartOnce(name string, fn func()) {
	mgr.Start(name, func() bool {
		fn()
		return false
	})
}

// Stop signals all running tasks to terminate.
func (mgr *TaskManager) Stop() {
	mgr.cancel()
}

// Wait blocks until all task goroutines have terminated.
func (mgr *TaskManager) Wait() {
	mgr.wg.Wait()
}

// TaskCount returns the number of currently running tasks.
func (mgr *TaskManager) TaskCount() int32 {
	return mgr.count.Load()
}

// callWithRecover calls a task body with panic protection. A panicking task
// is treated as stopped.
func (mgr *TaskManager) callWithRecover(name string, fn TaskFunc) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task", "name", name, "panic", r)
			cont = false
		}
	}()

	return fn()
}
