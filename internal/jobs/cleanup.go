package jobs

import (
	"log"
	"time"

	"github.com/dropfour/server/internal/service/game"
)

// CleanupWorker periodically evicts stale sessions from the in-memory
// table so finished games don't accumulate for the process lifetime.
type CleanupWorker struct {
	games       *game.Service
	interval    time.Duration
	finishedTTL time.Duration
	activeTTL   time.Duration
	stop        chan struct{}
}

func NewCleanupWorker(games *game.Service, interval, finishedTTL, activeTTL time.Duration) *CleanupWorker {
	return &CleanupWorker{
		games:       games,
		interval:    interval,
		finishedTTL: finishedTTL,
		activeTTL:   activeTTL,
		stop:        make(chan struct{}),
	}
}

func (w *CleanupWorker) Start() {
	go w.run()
	log.Println("[CLEANUP] Background worker started")
}

func (w *CleanupWorker) Stop() {
	close(w.stop)
}

func (w *CleanupWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := w.games.CleanupStale(w.finishedTTL, w.activeTTL); removed > 0 {
				log.Printf("[CLEANUP] Removed %d stale game sessions", removed)
			}
		case <-w.stop:
			return
		}
	}
}
