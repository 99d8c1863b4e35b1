package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
)

// Publisher receives batches of events. *kafka.Producer publishes them to a
// topic; *Aggregator records them in process.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers events off the request path and hands them to a
// Publisher in batches, when a batch fills up or every flush interval.
// Track never blocks: events arriving while the buffer is full are dropped.
type Collector struct {
	publisher     Publisher
	eventCh       chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
	done          chan struct{}
	mu            sync.RWMutex
	closed        bool
}

// NewCollector creates a Collector. m may be nil.
func NewCollector(publisher Publisher, cfg config.AnalyticsConfig, m *metrics.Metrics) *Collector {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan kafka.Event, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		metrics:       m,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the batching loop. It drains and flushes what is buffered
// when ctx is cancelled or Close is called.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := c.publisher.PublishBatch(ctx, batch); err != nil {
			c.logger.Error("batch flush failed", "batch_size", len(batch), "error", err)
		} else {
			c.logger.Debug("batch flushed", "events", len(batch))
		}
		batch = make([]kafka.Event, 0, c.batchSize)
	}

	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.finalFlush(flush)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			c.drain(&batch)
			c.finalFlush(flush)
			return
		}
	}
}

func (c *Collector) drain(batch *[]kafka.Event) {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			*batch = append(*batch, event)
		default:
			return
		}
	}
}

func (c *Collector) finalFlush(flush func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	flush(ctx)
}

// Track queues an event. key selects the Kafka partition. Events tracked
// after Close are dropped.
func (c *Collector) Track(key string, value any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		if c.metrics != nil {
			c.metrics.AnalyticsDropped.Inc()
		}
		return
	}
	select {
	case c.eventCh <- kafka.Event{Key: key, Value: value, Time: time.Now().UTC()}:
	default:
		if c.metrics != nil {
			c.metrics.AnalyticsDropped.Inc()
		}
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the final flush.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}
