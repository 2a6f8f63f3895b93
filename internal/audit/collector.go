package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BatchInserter persists a batch of events.
type BatchInserter interface {
	BatchInsert(ctx context.Context, events []Event) error
}

// Collector buffers events and writes them in batches, when the buffer
// reaches batchSize or every flushInterval. Safe for concurrent use.
type Collector struct {
	store         BatchInserter
	logger        *slog.Logger
	buffer        []Event
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	done          chan struct{}
	stopOnce      sync.Once
	dropped       func(n int)
}

func NewCollector(store BatchInserter, batchSize int, flushInterval time.Duration, logger *slog.Logger) *Collector {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		store:         store,
		logger:        logger,
		buffer:        make([]Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}
}

// OnDropped registers a callback for events lost to a failed flush.
func (c *Collector) OnDropped(fn func(n int)) { c.dropped = fn }

// Start flushes on a timer until Stop is called or ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-ctx.Done():
			c.flush()
			return
		case <-c.done:
			c.flush()
			return
		}
	}
}

// Record buffers ev, flushing right away once the batch is full.
func (c *Collector) Record(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	c.mu.Lock()
	c.buffer = append(c.buffer, ev)
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if full {
		c.flush()
	}
}

func (c *Collector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]Event, 0, c.batchSize)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.store.BatchInsert(ctx, batch); err != nil {
		c.logger.Error("failed to write audit events", "count", len(batch), "error", err)
		if c.dropped != nil {
			c.dropped(len(batch))
		}
	}
}

// Stop ends Start with a final flush. It may be called more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
