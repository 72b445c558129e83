package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
)

// Handler returns nil only when the offset may be committed.
type Handler func(ctx context.Context, env events.Envelope) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *slog.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: log}
}

// Start fetches until ctx is done. Undecodable messages are logged and committed
// so they do not block the partition; handler failures are left uncommitted.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				c.handle(ctx, id, m, h)
			}
		}(i)
	}
	defer wg.Wait()
	defer close(jobs)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, worker int, m kafka.Message, h Handler) {
	log := c.log.With("worker", worker, "topic", m.Topic, "partition", m.Partition, "offset", m.Offset)

	var env events.Envelope
	if err := UnmarshalEnvelope(m.Value, &env); err != nil {
		log.Warn("dropping undecodable message", "err", err)
		c.commit(ctx, log, m)
		return
	}
	if err := h(ctx, env); err != nil {
		log.Error("handler failed", "event_id", env.EventID, "type", env.EventType, "err", err)
		time.Sleep(200 * time.Millisecond)
		return
	}
	c.commit(ctx, log, m)
}

func (c *Consumer) commit(ctx context.Context, log *slog.Logger, m kafka.Message) {
	if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		log.Error("commit failed", "err", err)
	}
}
