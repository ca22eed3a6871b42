// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/pkg/logger"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

// BasePath is the prefix of every product route.
const BasePath = "/api/v1/products"

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates a new instance of the product REST API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
		now:     time.Now,
	}
}

// NotFoundResponse is the body returned when no active product has the requested SKU.
type NotFoundResponse struct {
	ErrorReason string `json:"errorReason"`
	Timestamp   string `json:"timestamp"`
}

// ValidationResponse is the body returned when a candidate product is rejected.
type ValidationResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", h.ListActive)
		r.Post("/", h.Create)

		r.Route("/{sku}", func(r chi.Router) {
			r.Use(skuLogContext)
			r.Get("/", h.GetActive)
			r.Put("/", h.Update)
			r.Patch("/", h.PartialUpdate)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// ListActive returns every active product, or 204 when there are none.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to list products")
	list, err := h.service.ListActive(r.Context())
	if err != nil {
		if errors.Is(err, perrors.ErrNoContent) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.respondServiceError(w, r, "list products", err)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, r, h.logger, http.StatusOK, list)
}

// GetActive retrieves a product by its SKU.
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	h.logger.DebugContext(r.Context(), "Received request to find product by SKU")
	found, err := h.service.GetActive(r.Context(), sku)
	if err != nil {
		h.respondServiceError(w, r, "retrieve product", err)
		return
	}
	web.RespondJSON(w, r, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, "create product", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "sku", created.SKU, "name", created.Name)
	w.Header().Set("Location", BasePath+"/"+created.SKU)
	web.RespondJSON(w, r, h.logger, http.StatusCreated, created)
}

// Update replaces all client-facing fields of a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), sku, input)
	if err != nil {
		h.respondServiceError(w, r, "update product", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully")
	web.RespondJSON(w, r, h.logger, http.StatusCreated, updated)
}

// PartialUpdate overwrites only the fields present in the body.
func (h *Handler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	updated, err := h.service.PartialUpdate(r.Context(), sku, input)
	if err != nil {
		h.respondServiceError(w, r, "partially update product", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product partially updated successfully")
	web.RespondJSON(w, r, h.logger, http.StatusCreated, updated)
}

// Delete soft-deletes a product by its SKU.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if err := h.service.Delete(r.Context(), sku); err != nil {
		h.respondServiceError(w, r, "delete product", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// skuLogContext tags every log record of the request with the path SKU.
func skuLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.AppendCtx(r.Context(), slog.String("sku", chi.URLParam(r, "sku")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (model.ProductInput, bool) {
	var input model.ProductInput
	if err := web.DecodeJSON(r, &input); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, r, h.logger, http.StatusBadRequest, "Invalid request body")
		return model.ProductInput{}, false
	}
	return input, true
}

// respondServiceError maps service errors to responses.
// Not found and validation failures are client errors; anything else is a 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var notFound *perrors.NotFoundError
	var invalid *perrors.ValidationError
	switch {
	case errors.As(err, &notFound):
		h.logger.WarnContext(r.Context(), "Product not found", "operation", op)
		web.RespondJSON(w, r, h.logger, http.StatusBadRequest, NotFoundResponse{
			ErrorReason: notFound.Error(),
			Timestamp:   h.now().UTC().Format(time.RFC3339),
		})
	case errors.As(err, &invalid):
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "operation", op, "errors", invalid.Errors)
		web.RespondJSON(w, r, h.logger, http.StatusBadRequest, ValidationResponse{
			Message: invalid.Message,
			Errors:  invalid.Errors,
		})
	default:
		h.logger.ErrorContext(r.Context(), "Product operation failed", "operation", op, "error", err)
		web.RespondError(w, r, h.logger, http.StatusInternalServerError, "Failed to "+op)
	}
}
