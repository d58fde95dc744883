package workers

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/torikura/rosterbackend/services"
)

// LifecycleWorker drives the lifecycle scheduler: one-shot timers for future
// transitions plus a recurring sweep that re-derives overdue work from the
// store. Timers are best-effort; the sweep is what guarantees progress.
type LifecycleWorker struct {
	Service       *services.LifecycleService
	SweepInterval time.Duration
	StopChan      chan struct{}
	Wg            sync.WaitGroup

	Mutex  sync.Mutex
	Timers map[string]*time.Timer
}

func NewLifecycleWorker(service *services.LifecycleService, sweepInterval time.Duration) *LifecycleWorker {
	return &LifecycleWorker{
		Service:       service,
		SweepInterval: sweepInterval,
		StopChan:      make(chan struct{}),
		Timers:        make(map[string]*time.Timer),
	}
}

func timerKey(p services.PendingTransition) string {
	return fmt.Sprintf("%s:%d", p.Direction, p.EmployeeID)
}

// InitializeLifecycleSchedules re-derives every future transition from the
// store and registers a one-shot timer for each. Returns an error when the
// store is unreachable so the host can fail loudly instead of running with
// an empty schedule set.
func (w *LifecycleWorker) InitializeLifecycleSchedules() error {
	pending, err := w.Service.PendingTransitions(time.Now())
	if err != nil {
		return fmt.Errorf("failed to initialize lifecycle schedules: %w", err)
	}
	for _, p := range pending {
		w.register(p)
	}
	log.Printf("lifecycle worker: registered %d deferred transition(s)", len(pending))
	return nil
}

// ScheduleTransition resolves one transition immediately: past-or-now
// triggers migrate synchronously, future ones get a one-shot timer. The
// advance notice goes out here, on the administrative act, never from
// startup re-derivation.
func (w *LifecycleWorker) ScheduleTransition(p services.PendingTransition) error {
	if !p.At.After(time.Now()) {
		return w.Service.Execute(p)
	}
	w.register(p)
	w.Service.NotifyScheduled(p)
	return nil
}

// register installs a one-shot timer for a future transition, superseding
// any previous timer for the same employee and direction.
func (w *LifecycleWorker) register(p services.PendingTransition) {
	key := timerKey(p)

	w.Mutex.Lock()
	if old, ok := w.Timers[key]; ok {
		old.Stop()
	}
	w.Timers[key] = time.AfterFunc(time.Until(p.At), func() {
		w.fire(key, p)
	})
	w.Mutex.Unlock()

	log.Printf("lifecycle worker: deferred %s for employee %d until %s",
		p.Direction, p.EmployeeID, p.At.Format(time.RFC3339))
}

// fire runs a deferred transition. Timers are one-shot: a failed migration
// is logged and left for the next sweep pass to retry.
func (w *LifecycleWorker) fire(key string, p services.PendingTransition) {
	w.Mutex.Lock()
	delete(w.Timers, key)
	w.Mutex.Unlock()

	if err := w.Service.Execute(p); err != nil {
		log.Printf("lifecycle worker: deferred %s for employee %d failed, awaiting sweep: %v",
			p.Direction, p.EmployeeID, err)
		return
	}
	log.Printf("lifecycle worker: completed deferred %s for employee %d", p.Direction, p.EmployeeID)
}

// Start launches the recurring overdue sweep in its own goroutine. The
// wait-group add happens here so a Stop racing startup always waits for
// the loop to exit.
func (w *LifecycleWorker) Start() {
	w.Wg.Add(1)
	go w.run()
}

func (w *LifecycleWorker) run() {
	defer w.Wg.Done()

	// catch anything that came due while the process was down
	w.Service.SweepOverdue(time.Now())

	ticker := time.NewTicker(w.SweepInterval)
	defer ticker.Stop()
	log.Printf("lifecycle worker: sweeping every %s", w.SweepInterval)

	for {
		select {
		case <-ticker.C:
			w.Service.SweepOverdue(time.Now())
		case <-w.StopChan:
			log.Println("lifecycle worker stopping: stop signal received")
			return
		}
	}
}

// Stop cancels all deferred timers and ends the sweep loop.
func (w *LifecycleWorker) Stop() {
	close(w.StopChan)

	w.Mutex.Lock()
	for key, timer := range w.Timers {
		timer.Stop()
		delete(w.Timers, key)
	}
	w.Mutex.Unlock()

	w.Wg.Wait()
}
