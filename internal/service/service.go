// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/validation"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// ListActive returns all active products ordered by SKU.
	// Returns ErrNoContent if there are none.
	ListActive(ctx context.Context) ([]ProductDto, error)

	// GetActive retrieves a single active product by its SKU.
	// Returns *NotFoundError if no active product exists with the given SKU.
	GetActive(ctx context.Context, sku string) (*ProductDto, error)

	// Create validates the input, allocates a SKU and stores the product.
	// Returns *ValidationError if the input violates any constraint.
	Create(ctx context.Context, input model.ProductInput) (*ProductDto, error)

	// Update replaces every client-facing field of an active product with the input.
	// Fields missing from the input are treated as absent and fail validation.
	Update(ctx context.Context, sku string, input model.ProductInput) (*ProductDto, error)

	// PartialUpdate overwrites only the fields present in the input.
	PartialUpdate(ctx context.Context, sku string, input model.ProductInput) (*ProductDto, error)

	// Delete marks an active product as inactive. The record is kept.
	Delete(ctx context.Context, sku string) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository         store.ProductStore
	skus               store.SKUGenerator
	validator          *validation.Validator
	publisher          messaging.Publisher
	logger             *slog.Logger
	now                func() time.Time
	writesCounter      metric.Int64Counter
	validationFailures metric.Int64Counter
}

// NewService creates a new instance of ProductService.
// A nil publisher disables events.
func NewService(repo store.ProductStore, skus store.SKUGenerator, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	meter := otel.Meter("product-service")
	writesCounter, err := meter.Int64Counter("products_written", metric.WithDescription("Total number of persisted product writes"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_written counter: %v", err))
	}
	validationFailures, err := meter.Int64Counter("product_validation_failures", metric.WithDescription("Total number of rejected product candidates"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_validation_failures counter: %v", err))
	}
	return &Service{
		repository:         repo,
		skus:               skus,
		validator:          validation.New(),
		publisher:          publisher,
		logger:             logger.With("component", "product-service"),
		now:                time.Now,
		writesCounter:      writesCounter,
		validationFailures: validationFailures,
	}
}

// ProductDto represents the data transfer object for a product.
// Status is internal and never serialized.
type ProductDto struct {
	SKU            string   `json:"sku"`
	Name           string   `json:"name"`
	Brand          string   `json:"brand"`
	Size           string   `json:"size"`
	Price          float64  `json:"price"`
	PrincipalImage string   `json:"principalImage"`
	OtherImages    []string `json:"otherImages"`
}

// ListActive retrieves all active products and returns them as ProductDTOs.
func (s *Service) ListActive(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if len(products) == 0 {
		return nil, perrors.ErrNoContent
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// GetActive retrieves an active product by its SKU and returns it as a ProductDto.
func (s *Service) GetActive(ctx context.Context, sku string) (*ProductDto, error) {
	product, err := s.findActive(ctx, sku)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

// Create stores a new product and returns it with its allocated SKU.
func (s *Service) Create(ctx context.Context, input model.ProductInput) (*ProductDto, error) {
	if err := s.validate(ctx, "create", input); err != nil {
		return nil, err
	}

	sku, err := s.skus.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	saved, err := s.save(ctx, "create", model.Apply(sku, input))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductCreatedEvent{ProductChange: s.change(saved)})
	return toDto(saved), nil
}

// Update replaces the product's client-facing fields with input verbatim.
func (s *Service) Update(ctx context.Context, sku string, input model.ProductInput) (*ProductDto, error) {
	if _, err := s.findActive(ctx, sku); err != nil {
		return nil, err
	}
	return s.replace(ctx, "update", sku, input, false)
}

// PartialUpdate merges the present fields of input into the stored product.
func (s *Service) PartialUpdate(ctx context.Context, sku string, input model.ProductInput) (*ProductDto, error) {
	existing, err := s.findActive(ctx, sku)
	if err != nil {
		return nil, err
	}
	candidate := model.Merge(model.FromProduct(*existing), input)
	return s.replace(ctx, "partial_update", sku, candidate, true)
}

// Delete soft-deletes an active product.
func (s *Service) Delete(ctx context.Context, sku string) error {
	existing, err := s.findActive(ctx, sku)
	if err != nil {
		return err
	}
	existing.Status = false
	if _, err := s.save(ctx, "delete", *existing); err != nil {
		return err
	}
	s.publish(ctx, events.ProductDeletedEvent{SKU: sku, OccurredAt: s.now().UTC()})
	return nil
}

func (s *Service) replace(ctx context.Context, op, sku string, candidate model.ProductInput, partial bool) (*ProductDto, error) {
	if err := s.validate(ctx, op, candidate); err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, op, model.Apply(sku, candidate))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductUpdatedEvent{ProductChange: s.change(saved), Partial: partial})
	return toDto(saved), nil
}

func (s *Service) findActive(ctx context.Context, sku string) (*model.Product, error) {
	product, err := s.repository.FindActive(ctx, sku)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, perrors.NewNotFoundError(sku)
		}
		return nil, fmt.Errorf("failed to fetch product by SKU %s: %w", sku, err)
	}
	return product, nil
}

func (s *Service) validate(ctx context.Context, op string, candidate model.ProductInput) error {
	violations := s.validator.Validate(candidate)
	if len(violations) == 0 {
		return nil
	}
	s.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	s.logger.DebugContext(ctx, "candidate rejected", "operation", op, "violations", len(violations))
	return perrors.NewValidationError(violations)
}

func (s *Service) save(ctx context.Context, op string, product model.Product) (*model.Product, error) {
	saved, err := s.repository.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", product.SKU, err)
	}
	s.writesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	return saved, nil
}

// publish never fails the caller; the write is already committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

func (s *Service) change(p *model.Product) events.ProductChange {
	return events.ProductChange{
		SKU:        p.SKU,
		Name:       p.Name,
		Brand:      p.Brand,
		Price:      p.Price,
		OccurredAt: s.now().UTC(),
	}
}

// toDto converts a model.Product to a ProductDto.
func toDto(product *model.Product) *ProductDto {
	images := product.OtherImages
	if images == nil {
		images = []string{}
	}
	return &ProductDto{
		SKU:            product.SKU,
		Name:           product.Name,
		Brand:          product.Brand,
		Size:           product.Size,
		Price:          product.Price,
		PrincipalImage: product.PrincipalImage,
		OtherImages:    images,
	}
}
