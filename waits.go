package ioc

import (
	"slices"
	"sync"
)

// builder is one synchronous chain of construction: a top-level Resolve and
// every nested resolution it performs. A builder waits on at most one flight
// at a time.
type builder struct {
	// parent is the builder that created the detached resolver this
	// builder started from. It is still running on the same call stack
	// while its own build is in progress.
	parent *builder

	waiting *flight // guarded by waitGraph.mu
}

// within reports whether b is o or was started from inside o.
func (b *builder) within(o *builder) bool {
	for x := b; x != nil; x = x.parent {
		if x == o {
			return true
		}
	}

	return false
}

// waitGraph records which builder waits on which flight, across all caches
// of one container, so that builds waiting on each other are reported as
// cycles instead of blocking forever.
type waitGraph struct {
	mu sync.Mutex
}

func newWaitGraph() *waitGraph {
	return &waitGraph{}
}

// wait blocks until f lands. It fails without blocking if the builder of
// f is, through the chain of builders waiting on each other, waiting on r.
func (g *waitGraph) wait(r *resolution, f *flight) error {
	b := r.builder()
	if b == nil || g == nil {
		<-f.done

		return nil
	}

	g.mu.Lock()

	if cycle := g.cycle(r, b, f); cycle != nil {
		g.mu.Unlock()

		return errCircular(cycle)
	}

	b.waiting = f
	g.mu.Unlock()

	<-f.done

	g.mu.Lock()
	b.waiting = nil
	g.mu.Unlock()

	return nil
}

// cycle returns the services on the wait chain from r back to itself, or nil
// if f does not lead back to b. g.mu must be held.
func (g *waitGraph) cycle(r *resolution, b *builder, f *flight) []ServiceType {
	chain := append(slices.Clone(r.path), f.key)

	for o := f.owner; o != nil; o = o.waiting.owner {
		if b.within(o) {
			return chain
		}

		if o.waiting == nil {
			return nil
		}

		chain = append(chain, o.waiting.key)
	}

	return nil
}
