// internal/stub/queue.go
package stub

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Queue is an in-memory pub/sub with bounded retries, standing in for the
// real backend's message broker.
type Queue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	jobs     sync.WaitGroup

	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

func NewQueue(log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		handlers:   make(map[string][]func(payload any) error),
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
		log:        log,
	}
}

// Publish hands the payload to every subscriber of the topic, each on its
// own goroutine with retry.
func (q *Queue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.jobs.Add(1)
		go q.processJob(handler, payload)
	}
	return nil
}

func (q *Queue) processJob(handler func(payload any) error, payload any) {
	defer q.jobs.Done()

	for attempt := 0; ; attempt++ {
		err := handler(payload)
		if err == nil {
			return
		}
		if attempt >= q.maxRetries {
			q.log.Warn("job permanently failed",
				zap.Any("payload", payload),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return
		}
		q.log.Debug("job failed, retrying",
			zap.Any("payload", payload),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		time.Sleep(time.Duration(attempt+1) * q.backoff)
	}
}

// Subscribe adds a handler for a topic.
func (q *Queue) Subscribe(topic string, handler func(payload any) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
}

// Drain blocks until every published job has finished. Test hook.
func (q *Queue) Drain() {
	q.jobs.Wait()
}

const sendTopic = "campaign_sends"

// startDeliverySubscriber consumes queued outbound message ids and flips
// them to sent or failed, simulating delivery with the given success rate.
func startDeliverySubscriber(q *Queue, store *Store, successRate float64, log *zap.Logger) {
	q.Subscribe(sendTopic, func(payload any) error {
		msgID, ok := payload.(int)
		if !ok {
			log.Warn("invalid payload type on send topic", zap.Any("payload", payload))
			return nil
		}

		msg, ok := store.OutboundByID(msgID)
		if !ok {
			log.Warn("queued message not found", zap.Int("message_id", msgID))
			return nil
		}

		if err := simulateSend(msg.RenderedContent, successRate); err != nil {
			store.UpdateOutboundStatus(msgID, "failed", err.Error())
			return err
		}
		store.UpdateOutboundStatus(msgID, "sent", "")
		return nil
	})
}

func simulateSend(content string, successRate float64) error {
	if rand.Float64() < successRate {
		return nil
	}
	return fmt.Errorf("simulated gateway failure")
}
