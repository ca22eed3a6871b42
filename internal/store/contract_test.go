package store

import (
	"context"
	"testing"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeCase is a behavior every ProductStore implementation must satisfy.
type storeCase struct {
	name string
	run  func(t *testing.T, ctx context.Context, s ProductStore)
}

func sampleProduct(sku string) model.Product {
	return model.Product{
		SKU:            sku,
		Name:           "any-name",
		Brand:          "any-brand",
		Size:           "M",
		Price:          12.5,
		PrincipalImage: "https://any-url.net",
		OtherImages:    []string{"https://any-url2.net", "https://any-url3.net"},
		Status:         true,
	}
}

func mustSave(t *testing.T, ctx context.Context, s ProductStore, p model.Product) *model.Product {
	t.Helper()
	saved, err := s.Save(ctx, p)
	require.NoError(t, err, "Save should not return an error")
	return saved
}

var storeContract = []storeCase{
	{
		name: "SaveAndFindActive",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			// given
			saved := mustSave(t, ctx, s, sampleProduct("FAL_000001"))

			// when
			found, err := s.FindActive(ctx, "FAL_000001")

			// then
			require.NoError(t, err)
			assert.Equal(t, sampleProduct("FAL_000001"), *saved)
			assert.Equal(t, *saved, *found)
		},
	},
	{
		name: "FindActive_NotFound",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			_, err := s.FindActive(ctx, "FAL_999999")
			require.ErrorIs(t, err, perrors.ErrProductNotFound)
		},
	},
	{
		name: "FindActive_HidesSoftDeleted",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			// given
			p := sampleProduct("FAL_000002")
			mustSave(t, ctx, s, p)
			p.Status = false

			// when
			mustSave(t, ctx, s, p)

			// then
			_, err := s.FindActive(ctx, "FAL_000002")
			require.ErrorIs(t, err, perrors.ErrProductNotFound)
			all, err := s.FindAllActive(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		},
	},
	{
		name: "Save_OverwritesBySKU",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			// given
			mustSave(t, ctx, s, sampleProduct("FAL_000003"))
			updated := sampleProduct("FAL_000003")
			updated.Name = "other-name"
			updated.Price = 99
			updated.OtherImages = []string{}

			// when
			saved := mustSave(t, ctx, s, updated)

			// then
			assert.Equal(t, updated, *saved)
			all, err := s.FindAllActive(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "other-name", all[0].Name)
			assert.Equal(t, []string{}, all[0].OtherImages)
		},
	},
	{
		name: "Save_NilImagesStoredEmpty",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			p := sampleProduct("FAL_000004")
			p.OtherImages = nil

			saved := mustSave(t, ctx, s, p)

			assert.NotNil(t, saved.OtherImages)
			assert.Empty(t, saved.OtherImages)
		},
	},
	{
		name: "Save_KeepsFractionalPrice",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			p := sampleProduct("FAL_000005")
			p.Price = 10.123

			mustSave(t, ctx, s, p)

			found, err := s.FindActive(ctx, p.SKU)
			require.NoError(t, err)
			assert.Equal(t, 10.123, found.Price)
		},
	},
	{
		name: "FindAllActive_OrderedBySKU",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			// given
			for _, sku := range []string{"FAL_000012", "FAL_000010", "FAL_000011"} {
				mustSave(t, ctx, s, sampleProduct(sku))
			}

			// when
			all, err := s.FindAllActive(ctx)

			// then
			require.NoError(t, err)
			skus := make([]string, 0, len(all))
			for _, p := range all {
				skus = append(skus, p.SKU)
			}
			assert.Equal(t, []string{"FAL_000010", "FAL_000011", "FAL_000012"}, skus)
		},
	},
	{
		name: "FindAllActive_EmptyIsNotNil",
		run: func(t *testing.T, ctx context.Context, s ProductStore) {
			all, err := s.FindAllActive(ctx)
			require.NoError(t, err)
			assert.NotNil(t, all)
			assert.Empty(t, all)
		},
	},
}
