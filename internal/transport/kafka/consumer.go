package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
)

// ConsumerConfig mirrors the C8 consumer surface: one consumer-group
// member, manual offset commit (`enable.auto.commit=false`).
type ConsumerConfig struct {
	Hosts          []string
	Topic          string
	Group          string
	ConnectTimeout time.Duration
}

// Handler processes one record. Returning a non-nil error withholds
// the commit (§4.2 step 9, §7 "Consumer" propagation policy); the
// record is redelivered on next poll.
type Handler func(ctx context.Context, msg *commonv1.Msg) error

type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("kafka: consumer requires at least one broker")
	}
	if cfg.Topic == "" || cfg.Group == "" {
		return nil, fmt.Errorf("kafka: consumer requires topic and group")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Hosts...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
		kgo.DialTimeout(cfg.ConnectTimeout),
		kgo.OnPartitionsAssigned(func(_ context.Context, _ *kgo.Client, assigned map[string][]int32) {
			logger.Info("kafka partitions assigned", "partitions", assigned)
		}),
		kgo.OnPartitionsRevoked(func(_ context.Context, _ *kgo.Client, revoked map[string][]int32) {
			logger.Info("kafka partitions revoked", "partitions", revoked)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: new consumer client: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until ctx is cancelled. Each record's offset is committed
// only after handler succeeds, one record at a time per partition so
// that a failing record blocks only its own partition's progress.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, e := range errs {
				c.logger.Error("kafka fetch error", "topic", e.Topic, "partition", e.Partition, "err", e.Err)
			}
		}

		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			for _, record := range p.Records {
				c.processRecord(ctx, record)
			}
		})
	}
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) {
	var msg commonv1.Msg
	if err := json.Unmarshal(record.Value, &msg); err != nil {
		c.logger.Warn("kafka: skipping undecodable record", "offset", record.Offset, "err", err)
		c.commit(ctx, record)
		return
	}

	if err := c.handler(ctx, &msg); err != nil {
		c.logger.Warn("kafka: handler failed, withholding commit", "server_id", msg.ServerId, "err", err)
		return
	}

	c.commit(ctx, record)
}

// commit asynchronously commits one record's offset, per §4.2 step 9
// ("commit the Kafka offset asynchronously").
func (c *Consumer) commit(ctx context.Context, record *kgo.Record) {
	go func() {
		if err := c.client.CommitRecords(ctx, record); err != nil {
			c.logger.Error("kafka: commit failed", "offset", record.Offset, "err", err)
		}
	}()
}

func (c *Consumer) Close() { c.client.Close() }
