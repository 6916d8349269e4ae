package nominatim

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// slidingWindow caps outbound requests at len(stamps) sends per window. It
// keeps the timestamp of every in-window send in a ring buffer; once the
// buffer is full a caller must wait until the oldest send ages out.
//
// Callers are expected to serialize access; the client's dispatch mutex
// covers every acquire.
type slidingWindow struct {
	clock  clockwork.Clock
	window time.Duration
	stamps []time.Time
	head   int // index of the oldest recorded send
	size   int
}

func newSlidingWindow(clk clockwork.Clock, limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{clock: clk, window: window, stamps: make([]time.Time, limit)}
}

// acquire blocks until a send slot is free, records the send timestamp, and
// returns how long the caller was held.
func (w *slidingWindow) acquire(ctx context.Context) (time.Duration, error) {
	if w.size < len(w.stamps) {
		tail := (w.head + w.size) % len(w.stamps)
		w.stamps[tail] = w.clock.Now()
		w.size++
		return 0, nil
	}

	var waited time.Duration
	if wait := w.window - w.clock.Since(w.stamps[w.head]); wait > 0 {
		timer := w.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.Chan():
			waited = wait
		}
	}

	// The timestamp is taken after the wait so the slot reflects the actual
	// send time, not the arrival time.
	w.stamps[w.head] = w.clock.Now()
	w.head = (w.head + 1) % len(w.stamps)
	return waited, nil
}
