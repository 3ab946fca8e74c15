package pubsub

import (
	"github.com/ThreeDotsLabs/watermill/message"
	infrapubsub "github.com/webitel/im-delivery-service/infra/pubsub"
)

// PublisherProvider opens per-exchange watermill publishers, letting
// callers (the ingress/consumer roles) each bind the audit exchange
// without repeating AMQP wiring.
type PublisherProvider struct {
	provider *infrapubsub.Provider
}

func NewPublisherProvider(p *infrapubsub.Provider) *PublisherProvider {
	return &PublisherProvider{provider: p}
}

func (pp *PublisherProvider) Build(exchange string) (message.Publisher, error) {
	return pp.provider.Build(exchange)
}
