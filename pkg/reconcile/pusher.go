package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/cloud"
	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
)

const (
	pusherQueueSize = 16
	pushTimeout     = 30 * time.Second
)

// Pusher uploads freshly generated maps in the background so the
// generate path never blocks on the network. Failed pushes are logged
// and dropped; the next full Sync picks the maps up again because they
// remain local-only.
type Pusher struct {
	queue   chan concept.MapRecord
	cloud   cloud.Store
	logger  *log.Logger
	wg      sync.WaitGroup
	closed  sync.Once
	expired func()
}

// NewPusher starts a Pusher with a single worker. onSessionExpired is
// invoked at most once, when a push is rejected for credential reasons;
// it may be nil.
func NewPusher(store cloud.Store, logger *log.Logger, onSessionExpired func()) *Pusher {
	p := &Pusher{
		queue:  make(chan concept.MapRecord, pusherQueueSize),
		cloud:  store,
		logger: logger,
	}
	var notify sync.Once
	p.expired = func() {
		if onSessionExpired != nil {
			notify.Do(onSessionExpired)
		}
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Enqueue queues rec for upload. It reports false when the queue is
// full; the record is dropped and will be reconciled on the next Sync.
func (p *Pusher) Enqueue(rec concept.MapRecord) bool {
	select {
	case p.queue <- rec:
		return true
	default:
		p.logger.Warn("push queue full, deferring to next sync", "prompt", rec.Prompt)
		return false
	}
}

// Close stops accepting records and blocks until queued uploads finish.
func (p *Pusher) Close() {
	p.closed.Do(func() { close(p.queue) })
	p.wg.Wait()
}

func (p *Pusher) run() {
	defer p.wg.Done()
	for rec := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err := p.cloud.InsertMap(ctx, rec)
		cancel()
		if err == nil {
			p.logger.Debug("map pushed to cloud", "prompt", rec.Prompt)
			continue
		}
		p.logger.Warn("background push failed", "prompt", rec.Prompt, "error", err)
		if errors.Is(err, errors.ErrCodeSessionExpired) {
			p.expired()
		}
	}
}
