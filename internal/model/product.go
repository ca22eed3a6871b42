// Package model defines the product entity and the client-facing input used to create and modify it.
package model

// Product is the persisted product record.
// Status is internal: false marks a soft-deleted product that no operation may see.
type Product struct {
	SKU            string
	Name           string
	Brand          string
	Size           string
	Price          float64
	PrincipalImage string
	OtherImages    []string
	Status         bool
}

// ProductInput carries the client-facing product fields.
// A nil field means the client did not send it; OtherImages is absent when nil and present when empty.
type ProductInput struct {
	Name           *string  `json:"name"`
	Brand          *string  `json:"brand"`
	Size           *string  `json:"size"`
	Price          *float64 `json:"price"`
	PrincipalImage *string  `json:"principalImage"`
	OtherImages    []string `json:"otherImages"`
}

// FromProduct returns an input with every field present and set to the stored values of p.
func FromProduct(p Product) ProductInput {
	return ProductInput{
		Name:           ptr(p.Name),
		Brand:          ptr(p.Brand),
		Size:           ptr(p.Size),
		Price:          ptr(p.Price),
		PrincipalImage: ptr(p.PrincipalImage),
		OtherImages:    cloneImages(p.OtherImages),
	}
}

// Merge overlays the present fields of patch onto existing and returns the result.
// Neither argument is modified and the result shares no slice memory with them.
func Merge(existing, patch ProductInput) ProductInput {
	merged := existing.clone()
	if patch.Name != nil {
		merged.Name = ptr(*patch.Name)
	}
	if patch.Brand != nil {
		merged.Brand = ptr(*patch.Brand)
	}
	if patch.Size != nil {
		merged.Size = ptr(*patch.Size)
	}
	if patch.Price != nil {
		merged.Price = ptr(*patch.Price)
	}
	if patch.PrincipalImage != nil {
		merged.PrincipalImage = ptr(*patch.PrincipalImage)
	}
	if patch.OtherImages != nil {
		merged.OtherImages = cloneImages(patch.OtherImages)
	}
	return merged
}

// Apply builds an active product with the given SKU from a validated candidate.
// Absent fields become zero values, so callers must validate the candidate first.
func Apply(sku string, candidate ProductInput) Product {
	return Product{
		SKU:            sku,
		Name:           deref(candidate.Name),
		Brand:          deref(candidate.Brand),
		Size:           deref(candidate.Size),
		Price:          deref(candidate.Price),
		PrincipalImage: deref(candidate.PrincipalImage),
		OtherImages:    cloneImages(candidate.OtherImages),
		Status:         true,
	}
}

func (in ProductInput) clone() ProductInput {
	out := ProductInput{OtherImages: cloneImages(in.OtherImages)}
	if in.Name != nil {
		out.Name = ptr(*in.Name)
	}
	if in.Brand != nil {
		out.Brand = ptr(*in.Brand)
	}
	if in.Size != nil {
		out.Size = ptr(*in.Size)
	}
	if in.Price != nil {
		out.Price = ptr(*in.Price)
	}
	if in.PrincipalImage != nil {
		out.PrincipalImage = ptr(*in.PrincipalImage)
	}
	return out
}

// cloneImages copies images, preserving the nil/empty distinction.
func cloneImages(images []string) []string {
	if images == nil {
		return nil
	}
	out := make([]string, len(images))
	copy(out, images)
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
