// Package messaging defines the domain events published by the service and the publisher abstraction.
package messaging

import (
	"context"
)

const (
	ProductsSubjectPrefix  = "products."
	ProductsSubjects       = ProductsSubjectPrefix + ">"
	ProductsCreatedSubject = ProductsSubjectPrefix + "created"
	ProductsUpdatedSubject = ProductsSubjectPrefix + "updated"
	ProductsDeletedSubject = ProductsSubjectPrefix + "deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
