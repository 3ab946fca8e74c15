// Package pubsub builds the watermill AMQP publisher the audit/
// notification bus (internal/adapter/pubsub) sends events through.
//
// The teacher repo fronts this with an infra/pubsub/factory.Factory
// abstraction (BuildPublisher(*PublisherConfig)) that is never defined
// anywhere in the retrieved pack — neither infra/pubsub nor
// infra/pubsub/factory exists outside this one dangling import, in
// the teacher's own original source tree either. Rather than invent
// that interface layer, this package calls watermill-amqp/v3's own
// constructors directly: one fewer layer of indirection than the
// teacher, same outcome.
package pubsub

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	amqp "github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Provider opens durable topic-exchange publishers against a single
// AMQP broker connection string.
type Provider struct {
	uri    string
	logger watermill.LoggerAdapter
}

func NewProvider(uri string, logger *slog.Logger) *Provider {
	return &Provider{uri: uri, logger: NewWatermillLogger(logger)}
}

// Build opens a durable publisher bound to exchange. Routing keys
// passed to Publisher.Publish double as the AMQP routing key and the
// generated queue name, matching the teacher's topic-exchange usage.
func (p *Provider) Build(exchange string) (message.Publisher, error) {
	cfg := amqp.NewDurablePubSubConfig(p.uri, func(topic string) string {
		return exchange + "." + topic
	})
	cfg.Exchange.GenerateName = func(topic string) string { return exchange }
	cfg.Exchange.Type = "topic"
	cfg.Exchange.Durable = true

	return amqp.NewPublisher(cfg, p.logger)
}

// NewWatermillLogger adapts the process's slog.Logger onto
// watermill.LoggerAdapter, the way the teacher wires its own logger
// into every ThreeDotsLabs component.
func NewWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return slogWatermillLogger{logger: logger}
}

type slogWatermillLogger struct {
	logger *slog.Logger
	fields watermill.LogFields
}

func (l slogWatermillLogger) attrs() []any {
	attrs := make([]any, 0, len(l.fields)*2)
	for k, v := range l.fields {
		attrs = append(attrs, k, v)
	}
	return attrs
}

func (l slogWatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	attrs := append(l.attrs(), "err", err)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	l.logger.Error(msg, attrs...)
}

func (l slogWatermillLogger) Info(msg string, fields watermill.LogFields) {
	attrs := l.attrs()
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	l.logger.Info(msg, attrs...)
}

func (l slogWatermillLogger) Debug(msg string, fields watermill.LogFields) {
	attrs := l.attrs()
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	l.logger.Debug(msg, attrs...)
}

func (l slogWatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.Debug(msg, fields)
}

func (l slogWatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	merged := make(watermill.LogFields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return slogWatermillLogger{logger: l.logger, fields: merged}
}
