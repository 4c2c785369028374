package catalog

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/marketfront/internal/models"
)

// Refresher refetches the full catalog on a cron schedule so a long-lived
// browsing session does not go stale.
type Refresher struct {
	schedule cron.Schedule
	loader   *Loader
	onUpdate func([]models.Product)
	done     chan bool
}

// NewRefresher creates a refresher for the given standard cron expression.
// onUpdate receives the fresh snapshot after each successful refetch; it
// may be nil.
func NewRefresher(expr string, loader *Loader, onUpdate func([]models.Product)) (*Refresher, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}
	return &Refresher{
		schedule: schedule,
		loader:   loader,
		onUpdate: onUpdate,
		done:     make(chan bool),
	}, nil
}

// Run starts the refresh loop. It blocks until Stop is called.
func (r *Refresher) Run() {
	log.Info().Msg("Starting background catalog refresher...")
	for {
		next := r.schedule.Next(time.Now())
		select {
		case <-r.done:
			log.Info().Msg("Stopping background catalog refresher.")
			return
		case <-time.After(time.Until(next)):
			r.refresh()
		}
	}
}

// Stop halts the refresher.
func (r *Refresher) Stop() {
	r.done <- true
}

func (r *Refresher) refresh() {
	products, err := r.loader.LoadAll(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("Scheduled catalog refresh failed")
		return
	}
	if products == nil {
		// Superseded by a foreground load; nothing to report.
		return
	}
	log.Debug().Int("count", len(products)).Msg("Catalog refreshed on schedule")
	if r.onUpdate != nil {
		r.onUpdate(products)
	}
}
