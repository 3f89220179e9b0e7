package dashboard

import (
	"context"
	"sync"
)

// requestSeq hands out increasing sequence numbers so that only the most
// recently started load may publish its result. Starting a load cancels the
// previous one.
type requestSeq struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func (r *requestSeq) begin(parent context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	r.seq++
	r.cancel = cancel
	return ctx, r.seq
}

// finish reports whether seq is still the latest request and releases its
// context when it is.
func (r *requestSeq) finish(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq {
		return false
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return true
}

func (r *requestSeq) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
