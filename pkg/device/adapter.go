package device

import "sync"

const (
	// DefaultThresholdPx is the width below which the layout is compact.
	DefaultThresholdPx = 768
	// DefaultCellWidthPx approximates one terminal column in logical pixels.
	DefaultCellWidthPx = 8
)

// Subscriber receives the new compact value whenever it flips.
type Subscriber chan bool

// Adapter turns viewport widths into a compact/wide signal. It holds no
// reference to selection or view state.
type Adapter struct {
	thresholdPx int
	cellWidthPx int

	mu          sync.RWMutex
	compact     bool
	known       bool
	closed      bool
	subscribers []Subscriber
}

// NewAdapter builds an adapter. Non-positive arguments fall back to the defaults.
func NewAdapter(thresholdPx, cellWidthPx int) *Adapter {
	if thresholdPx <= 0 {
		thresholdPx = DefaultThresholdPx
	}
	if cellWidthPx <= 0 {
		cellWidthPx = DefaultCellWidthPx
	}
	return &Adapter{thresholdPx: thresholdPx, cellWidthPx: cellWidthPx}
}

// Compact reports the current layout mode.
func (a *Adapter) Compact() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.compact
}

// IsCompactWidth reports whether widthPx is under the threshold.
func (a *Adapter) IsCompactWidth(widthPx int) bool {
	return widthPx < a.thresholdPx
}

// Resize records a new viewport width in terminal cells. changed is true
// when the compact value crossed the threshold (or on the first call).
// After Close, Resize is ignored.
func (a *Adapter) Resize(widthCells int) (compact, changed bool) {
	next := a.IsCompactWidth(widthCells * a.cellWidthPx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return a.compact, false
	}
	changed = !a.known || next != a.compact
	a.compact = next
	a.known = true

	if changed {
		for _, sub := range a.subscribers {
			// Keep only the latest value for slow listeners.
			select {
			case sub <- next:
			default:
				select {
				case <-sub:
				default:
				}
				select {
				case sub <- next:
				default:
				}
			}
		}
	}
	return next, changed
}

// Subscribe registers a listener for compact changes.
func (a *Adapter) Subscribe() Subscriber {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch := make(Subscriber, 1)
	if a.closed {
		close(ch)
		return ch
	}
	a.subscribers = append(a.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a listener.
func (a *Adapter) Unsubscribe(ch Subscriber) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, sub := range a.subscribers {
		if sub == ch {
			a.subscribers = append(a.subscribers[:i], a.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close deregisters every listener. Safe to call more than once.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for _, sub := range a.subscribers {
		close(sub)
	}
	a.subscribers = nil
}
