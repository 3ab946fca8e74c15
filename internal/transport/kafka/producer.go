// Package kafka wires the durable topic for the ingress RPC (C7, one
// producer per process) and the consumer (C8, one consumer-group
// member per process), grounded on adred-codev-ws_poc/ws/kafka's
// franz-go usage, generalized to exactly-once-per-group manual commit.
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

// ProducerConfig mirrors the §4.1 producer contract: acks=all,
// idempotence on, retries configured, per-record timeout.
type ProducerConfig struct {
	Hosts          []string
	Topic          string
	ConnectTimeout time.Duration
	RecordTimeout  time.Duration
}

type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewProducer(cfg ProducerConfig, logger *slog.Logger) (*Producer, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("kafka: producer requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: producer requires a topic")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Hosts...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(5),
		kgo.ProduceRequestTimeout(cfg.RecordTimeout),
		kgo.DialTimeout(cfg.ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: new producer client: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish serialises msg as a single JSON record with no key (broker
// chooses partition, §6's "Topic record format") and blocks until the
// broker acknowledges it.
func (p *Producer) Publish(ctx context.Context, msg *commonv1.Msg) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("kafka: marshal msg %s: %w", msg.ServerId, err)
	}
	record := &kgo.Record{Topic: p.topic, Value: payload}

	result := p.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("kafka: publish %s: %w", msg.ServerId, err)
	}
	return nil
}

func (p *Producer) Close() { p.client.Close() }
