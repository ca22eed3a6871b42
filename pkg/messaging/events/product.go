package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productcatalog/pkg/messaging"
)

// ProductChange is the body shared by all product events.
type ProductChange struct {
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ProductCreatedEvent struct {
	ProductChange
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductUpdatedEvent struct {
	ProductChange
	Partial bool `json:"partial"`
}

func (e ProductUpdatedEvent) Subject() string {
	return messaging.ProductsUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductDeletedEvent struct {
	SKU        string    `json:"sku"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductDeletedEvent) Subject() string {
	return messaging.ProductsDeletedSubject
}

func (e ProductDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
