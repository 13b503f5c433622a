package errorcollector

import (
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
	"fieldsync/model/store"
)

// Collector queues integration errors in memory and flushes them to the
// durable log opportunistically. The queue is process local and unbounded;
// it mirrors a durable log, losing it on restart is acceptable.
type Collector struct {
	store store.Store

	queueLock sync.Mutex
	queue     []model.IntegrationError
}

func New(s store.Store) *Collector {
	return &Collector{store: s}
}

// Report queues an error row and attempts an immediate flush.
func (c *Collector) Report(integrationError model.IntegrationError) {
	if integrationError.Timestamp.IsZero() {
		integrationError.Timestamp = time.Now()
	}

	c.queueLock.Lock()
	c.queue = append(c.queue, integrationError)
	c.queueLock.Unlock()

	c.Flush()
}

// Flush drains the queue into the store. On failure the batch is requeued
// in front of anything reported meanwhile, preserving order.
func (c *Collector) Flush() {
	c.queueLock.Lock()
	pending := c.queue
	c.queue = nil
	c.queueLock.Unlock()

	if len(pending) == 0 {
		return
	}

	errCode := c.store.CreateIntegrationErrors(pending)
	if errCode != http.StatusCreated {
		log.WithField("count", len(pending)).Error(
			"Failed to flush integration errors, requeueing.")

		c.queueLock.Lock()
		c.queue = append(pending, c.queue...)
		c.queueLock.Unlock()
	}
}

// QueueLen reports the number of rows waiting for a flush.
func (c *Collector) QueueLen() int {
	c.queueLock.Lock()
	defer c.queueLock.Unlock()
	return len(c.queue)
}
