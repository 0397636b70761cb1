package service

import (
	"sync"
	"time"
)

// periodicTask runs fn on a ticker goroutine between Start and Stop.
//
// Stop only signals the goroutine and never blocks, so it is safe to call while
// holding a lock that fn itself acquires. Every run ever started is joined by Wait.
type periodicTask struct {
	interval time.Duration
	fn       func()

	mu   sync.Mutex
	stop chan struct{} // nil while stopped
	wg   sync.WaitGroup
}

func newPeriodicTask(interval time.Duration, fn func()) *periodicTask {
	return &periodicTask{interval: interval, fn: fn}
}

// Start launches the ticker goroutine. It returns false if already running.
func (t *periodicTask) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return false
	}
	stop := make(chan struct{})
	t.stop = stop
	t.wg.Add(1)
	go t.run(stop)
	return true
}

// Stop signals the current run to exit. It returns false if not running.
func (t *periodicTask) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop == nil {
		return false
	}
	close(t.stop)
	t.stop = nil
	return true
}

// Running reports whether a run is active.
func (t *periodicTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Wait blocks until every stopped run has exited. Callers must Stop first
// and must not hold any lock fn acquires.
func (t *periodicTask) Wait() {
	t.wg.Wait()
}

func (t *periodicTask) run(stop <-chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// a tick and a stop can be ready together; stop wins
			select {
			case <-stop:
				return
			default:
			}
			t.fn()
		}
	}
}
