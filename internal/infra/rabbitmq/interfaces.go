package rabbitmq

import "context"

// PublisherInterface is what the order service depends on; data is
// marshalled to JSON and routed by the event's routing key.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)