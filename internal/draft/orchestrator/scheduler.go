package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	idlePollDuration = 5 * time.Second
	maxFetchRetries  = 3
)

// RunScheduler loops until the context is cancelled: read the soonest pick
// deadline, sleep until it (or until woken by a domain event), then claim
// overdue drafts and queue them for the workers. Multiple instances may run
// concurrently; the conditional commit makes duplicate claims harmless.
func (o *Orchestrator) RunScheduler(ctx context.Context) error {
	log.Info().
		Str("instance", o.instanceID).
		Int("workers", o.config.NumWorkers).
		Msg("scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.config.NumWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	defer func() {
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	}()

	timer := o.clock.NewTimer(0)
	defer timer.Stop()
	retryCount := 0

	for {
		// Drain a stale wake so it does not trigger an immediate spin on
		// the next select.
		select {
		case <-o.wakeCh:
		default:
		}

		nd, err := o.drafts.FetchNextDeadline(ctx)
		if err != nil {
			retryCount++
			if retryCount <= maxFetchRetries {
				log.Error().Err(err).
					Int("retry", retryCount).
					Str("instance", o.instanceID).
					Msg("error fetching next deadline, retrying")
				timer.Reset(time.Second * time.Duration(retryCount))
				select {
				case <-timer.Chan():
					continue
				case <-ctx.Done():
					return nil
				}
			}
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching next deadline after retries")
			return err
		}
		retryCount = 0

		if nd == nil || nd.Deadline == nil {
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			case <-o.wakeCh:
				continue
			}
		}

		if wait := sleepUntil(*nd.Deadline, o.clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				return nil
			case <-o.wakeCh:
				// A sooner deadline may exist now.
				continue
			}
		}

		due, err := o.drafts.FetchDraftsDueForAdvance(ctx, o.config.BatchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching due drafts")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if len(due) > 0 {
			log.Info().
				Int("count_due", len(due)).
				Str("instance", o.instanceID).
				Msg("processing due drafts")
			if !o.enqueueDue(ctx, due) {
				return nil
			}
		}
	}
}
