package workers

import (
	"log"
	"sync"
	"time"

	"github.com/torikura/rosterbackend/services"
)

// RosterWorker runs the two recurring scheduling jobs: full-time shift
// assignment plus part-time request finalization on one interval, and the
// stale-request cleanup on a slower one. Each pass runs to completion before
// the next tick is serviced.
type RosterWorker struct {
	Shifts          *services.ShiftService
	Requests        *services.RequestService
	RosterInterval  time.Duration
	CleanupInterval time.Duration
	StopChan        chan struct{}
	Wg              sync.WaitGroup
}

func NewRosterWorker(shifts *services.ShiftService, requests *services.RequestService, rosterInterval, cleanupInterval time.Duration) *RosterWorker {
	return &RosterWorker{
		Shifts:          shifts,
		Requests:        requests,
		RosterInterval:  rosterInterval,
		CleanupInterval: cleanupInterval,
		StopChan:        make(chan struct{}),
	}
}

// Start launches both recurring jobs in their own goroutine. The wait-group
// add happens here so a Stop racing startup always waits for the loop to
// exit.
func (w *RosterWorker) Start() {
	w.Wg.Add(1)
	go w.run()
}

func (w *RosterWorker) run() {
	defer w.Wg.Done()

	rosterTicker := time.NewTicker(w.RosterInterval)
	defer rosterTicker.Stop()
	cleanupTicker := time.NewTicker(w.CleanupInterval)
	defer cleanupTicker.Stop()
	log.Printf("roster worker: planning every %s, cleanup every %s", w.RosterInterval, w.CleanupInterval)

	// plan immediately on startup rather than waiting a full interval
	w.runPass()

	for {
		select {
		case <-rosterTicker.C:
			w.runPass()
		case <-cleanupTicker.C:
			if err := w.Requests.Cleanup(time.Now()); err != nil {
				log.Printf("roster worker: cleanup failed: %v", err)
			}
		case <-w.StopChan:
			log.Println("roster worker stopping: stop signal received")
			return
		}
	}
}

func (w *RosterWorker) runPass() {
	now := time.Now()
	if err := w.Shifts.Run(now); err != nil {
		log.Printf("roster worker: shift assignment failed: %v", err)
	}
	if err := w.Requests.Finalize(now); err != nil {
		log.Printf("roster worker: request finalization failed: %v", err)
	}
}

// Stop ends the worker loop.
func (w *RosterWorker) Stop() {
	close(w.StopChan)
	w.Wg.Wait()
}
