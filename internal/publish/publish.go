// Package publish delivers the outcome of a single scrape to its subscribers.
//
// A Publisher settles exactly once, either with an enriched batch or with a
// failure. Subscribers registered before or after settlement all receive the
// same outcome; a second Publish or Fail is rejected.
package publish

import (
	"context"
	"errors"
	"slices"
	"sync"

	"mspro-labs/flat-scout/internal/models"
)

// ErrAlreadySettled is returned by Publish and Fail after the first outcome.
var ErrAlreadySettled = errors.New("publisher already settled")

// Result is what subscribers receive. Exactly one of Batch or Err is meaningful.
type Result struct {
	Batch models.Batch
	Err   error
}

type Publisher struct {
	mu      sync.Mutex
	subs    map[int]chan Result
	nextID  int
	settled bool
	result  Result
	done    chan struct{}
}

func New() *Publisher {
	return &Publisher{
		subs: make(map[int]chan Result),
		done: make(chan struct{}),
	}
}

// Subscribe registers a consumer. The channel receives one Result and is then
// closed. The returned func unsubscribes; it is safe to call more than once.
func (p *Publisher) Subscribe() (<-chan Result, func()) {
	ch := make(chan Result, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.settled {
		ch <- p.copyResult()
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = ch

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}
}

// Publish settles the publisher with a successful batch.
func (p *Publisher) Publish(batch models.Batch) error {
	batch.Offers = slices.Clone(batch.Offers)
	return p.settle(Result{Batch: batch})
}

// Fail settles the publisher with a terminal failure.
func (p *Publisher) Fail(err error) error {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return p.settle(Result{Err: err})
}

func (p *Publisher) settle(r Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.settled {
		return ErrAlreadySettled
	}
	p.settled = true
	p.result = r

	for id, ch := range p.subs {
		ch <- p.copyResult()
		close(ch)
		delete(p.subs, id)
	}
	close(p.done)
	return nil
}

// copyResult gives each consumer its own offers slice so none can mutate another's view.
// Callers must hold p.mu.
func (p *Publisher) copyResult() Result {
	r := p.result
	r.Batch.Offers = slices.Clone(r.Batch.Offers)
	return r
}

// Done is closed once the publisher has settled.
func (p *Publisher) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the publisher settles or ctx is done.
func (p *Publisher) Await(ctx context.Context) (models.Batch, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return models.Batch{}, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.copyResult()
	return r.Batch, r.Err
}
