package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	jobTimeout     = 30 * time.Second
)

// ImageDeleter removes a stored image by its public URL.
type ImageDeleter interface {
	Delete(ctx context.Context, url string) error
}

type cleanupJob struct {
	productID string
	url       string
}

// Dispatcher removes superseded product images in the background. Jobs are
// routed to a fixed set of workers by hashing the product id, so the cleanups
// of one product run in the order they were scheduled.
type Dispatcher struct {
	workers []chan cleanupJob
	images  ImageDeleter
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, images ImageDeleter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan cleanupJob, numWorkers),
		images:  images,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan cleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Schedule queues removal of url. It blocks once the worker's buffer is full.
func (d *Dispatcher) Schedule(productID, url string) {
	idx := d.shardIndex(productID)
	d.workers[idx] <- cleanupJob{productID: productID, url: url}
	metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a product id deterministically to a worker index.
func (d *Dispatcher) shardIndex(productID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan cleanupJob) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.ImageCleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, worker int, job cleanupJob) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := d.images.Delete(jobCtx, job.url); err != nil {
		metrics.ImageCleanupTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("product_id", job.productID).
			Str("url", job.url).
			Int("worker_id", worker).
			Msg("image cleanup failed")
		return
	}
	metrics.ImageCleanupTotal.WithLabelValues("ok").Inc()
	d.log.Debug().Str("product_id", job.productID).Str("url", job.url).Msg("image cleaned up")
}
