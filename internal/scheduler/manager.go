package scheduler

import (
	"log"
	"time"

	"github.com/pokerjest/trackAutoTool/internal/batch"
)

// Completed batches stay pollable for a while after they finish, then get
// purged so a long-lived process does not accumulate them forever.
const (
	purgeInterval = 15 * time.Minute
	batchTTL      = 1 * time.Hour
)

type Manager struct {
	ticker  *time.Ticker
	quit    chan struct{}
	batches *batch.Store
}

func NewManager(batches *batch.Store) *Manager {
	return &Manager{
		ticker:  time.NewTicker(purgeInterval),
		quit:    make(chan struct{}),
		batches: batches,
	}
}

func (m *Manager) Start() {
	log.Println("Scheduler started...")
	go func() {
		for {
			select {
			case <-m.ticker.C:
				m.PurgeExpired()
			case <-m.quit:
				m.ticker.Stop()
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	close(m.quit)
	log.Println("Scheduler stopped.")
}

func (m *Manager) PurgeExpired() {
	if n := m.batches.Purge(batchTTL); n > 0 {
		log.Printf("Scheduler: purged %d expired batch operations (%d remaining)", n, m.batches.Len())
	}
}
