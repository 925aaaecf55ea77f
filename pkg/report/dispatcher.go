package report

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"quillcheck/pkg/metrics"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single report fetch.
const DefaultTimeout = 30 * time.Second

// ErrNoDataSource is returned when the dispatcher has nothing to fetch from.
var ErrNoDataSource = errors.New("no report data source configured")

// DataSource fetches a report for a validated token.
type DataSource interface {
	FetchReport(ctx context.Context, req Request) (Report, error)
}

// Dispatcher hands validated requests to a DataSource and publishes the
// outcome. It never retries, and a dispatch that is no longer wanted is left
// to finish; consumers match events by Seq.
type Dispatcher struct {
	dataSource DataSource
	timeout    time.Duration
	log        zerolog.Logger
	metrics    *metrics.Metrics

	seq         atomic.Uint64
	subscribers []Subscriber
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A non-positive timeout means DefaultTimeout.
func NewDispatcher(ds DataSource, log zerolog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		dataSource: ds,
		timeout:    timeout,
		log:        log,
	}
}

// SetDataSource allows overriding the data source (useful for testing).
func (d *Dispatcher) SetDataSource(ds DataSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dataSource = ds
}

// SetMetrics attaches dispatch counters.
func (d *Dispatcher) SetMetrics(m *metrics.Metrics) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics = m
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (d *Dispatcher) Subscribe() Subscriber {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(Subscriber, 16)
	d.subscribers = append(d.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (d *Dispatcher) Unsubscribe(ch Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subscribers {
		if sub == ch {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (d *Dispatcher) notify(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sub := range d.subscribers {
		select {
		case sub <- event:
		default:
			d.log.Warn().Uint64("seq", event.Seq).Msg("subscriber full, dropping report event")
		}
	}
}

// Dispatch starts one asynchronous fetch and returns its sequence number.
func (d *Dispatcher) Dispatch(req Request) uint64 {
	seq := d.seq.Add(1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		rep, err := d.Fetch(ctx, req)
		d.notify(newEvent(seq, req, rep, err))
	}()
	return seq
}

// FetchAndNotify runs one fetch synchronously and publishes the outcome to
// subscribers under a fresh sequence number.
func (d *Dispatcher) FetchAndNotify(ctx context.Context, req Request) (uint64, Report, error) {
	seq := d.seq.Add(1)
	rep, err := d.Fetch(ctx, req)
	d.notify(newEvent(seq, req, rep, err))
	return seq, rep, err
}

func newEvent(seq uint64, req Request, rep Report, err error) Event {
	event := Event{Type: EventReportLoaded, Seq: seq, Request: req, Report: rep}
	if err != nil {
		event.Type = EventReportFailed
		event.Err = err
		event.Error = err.Error()
	}
	return event
}

// Fetch runs one fetch synchronously.
func (d *Dispatcher) Fetch(ctx context.Context, req Request) (Report, error) {
	d.mu.RLock()
	ds := d.dataSource
	m := d.metrics
	d.mu.RUnlock()

	if ds == nil {
		m.ObserveDispatch(ErrNoDataSource)
		return Report{}, ErrNoDataSource
	}

	start := time.Now()
	rep, err := ds.FetchReport(ctx, req)
	m.ObserveDispatch(err)
	if err != nil {
		d.log.Error().Err(err).Str("request", req.String()).Msg("report fetch failed")
		return Report{}, err
	}
	if rep.FetchedAt.IsZero() {
		rep.FetchedAt = time.Now()
	}
	d.log.Info().
		Str("request", req.String()).
		Int("findings", rep.Total()).
		Dur("duration", time.Since(start)).
		Msg("report fetched")
	return rep, nil
}

// Wait blocks until every dispatched fetch has published its event.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
