package render

import (
	"context"
	"errors"
)

// ErrPoolClosed is returned by [Pool.Render] after [Pool.Close].
var ErrPoolClosed = errors.New("render pool is closed")

// ///////////////////////////////////////////////
// Pool
// ///////////////////////////////////////////////

// Pool bounds the number of compositions running at once. Callers block in
// [Pool.Render] until a slot frees up or their context ends.
type Pool struct {
	// slots holds one token per running composition.
	slots chan struct{}
	// done is closed by Close.
	done chan struct{}
}

// NewPool returns a pool running at most workers compositions. Values below
// one are treated as one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		slots: make(chan struct{}, workers),
		done:  make(chan struct{}),
	}
}

// Size returns the maximum number of concurrent compositions.
func (p *Pool) Size() int { return cap(p.slots) }

// Running returns the number of compositions holding a slot.
func (p *Pool) Running() int { return len(p.slots) }

// Render waits for a free slot, then runs comp through [Run].
func (p *Pool) Render(ctx context.Context, rc *Context, comp Composer) ([]byte, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrPoolClosed
	}
	defer func() { <-p.slots }()
	return Run(ctx, rc, comp)
}

// Close stops the pool from accepting new work. Running compositions finish
// normally. Close must be called at most once.
func (p *Pool) Close() {
	close(p.done)
}
