package infra

import (
	"context"
	"errors"
)

// Publisher delivers an event under a routing key such as "order.created".
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// MultiPublisher fans an event out to every publisher in order. All of them
// are attempted; their errors are joined.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, routingKey, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

var (
	_ Publisher = MultiPublisher(nil)
	_ Publisher = NopPublisher{}
)
