package products_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"techstore/internal/products"
	"techstore/internal/stores/memory"
)

func newConf(t *testing.T) *products.Conf {
	t.Helper()
	p, err := products.NewConf(memory.New())
	require.NoError(t, err)
	return p
}

func insert(t *testing.T, p *products.Conf, np products.NewProduct) products.Product {
	t.Helper()
	if np.Description == "" {
		np.Description = np.Name + " description"
	}
	if np.ImageURL == "" {
		np.ImageURL = "https://example.com/p.jpg"
	}
	product, err := p.Insert(context.Background(), np)
	require.NoError(t, err)
	return product
}

func TestListFiltersByCategoryAndFeatured(t *testing.T) {
	ctx := context.Background()
	p := newConf(t)

	insert(t, p, products.NewProduct{Name: "phone", Price: decimal.NewFromInt(100), Category: "smartphones", Featured: true})
	insert(t, p, products.NewProduct{Name: "laptop", Price: decimal.NewFromInt(200), Category: "laptops", Featured: true})
	insert(t, p, products.NewProduct{Name: "case", Price: decimal.NewFromInt(10), Category: "smartphones"})

	all, err := p.List(ctx, products.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	phones, err := p.List(ctx, products.Filter{Category: "smartphones"})
	require.NoError(t, err)
	require.Len(t, phones, 2)

	featured := true
	featuredPhones, err := p.List(ctx, products.Filter{Category: "smartphones", Featured: &featured})
	require.NoError(t, err)
	require.Len(t, featuredPhones, 1)
	require.Equal(t, "phone", featuredPhones[0].Name)

	notFeatured := false
	plain, err := p.List(ctx, products.Filter{Featured: &notFeatured})
	require.NoError(t, err)
	require.Len(t, plain, 1)
	require.Equal(t, "case", plain[0].Name)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	p := newConf(t)

	insert(t, p, products.NewProduct{Name: "Noise Cancelling Headphones", Price: decimal.NewFromInt(100), Category: "audio"})
	insert(t, p, products.NewProduct{Name: "USB Cable", Description: "charging cable", Price: decimal.NewFromInt(5), Category: "accessories"})

	byName, err := p.Search(ctx, "HEADPHONES")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byDescription, err := p.Search(ctx, "charging")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)

	byCategory, err := p.Search(ctx, "audio")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	none, err := p.Search(ctx, "tractor")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSearchBlankQueryMatchesNothing(t *testing.T) {
	ctx := context.Background()
	p := newConf(t)
	insert(t, p, products.NewProduct{Name: "phone", Price: decimal.NewFromInt(100), Category: "smartphones"})

	for _, q := range []string{"", "   ", "\t"} {
		got, err := p.Search(ctx, q)
		require.NoError(t, err)
		require.Empty(t, got)
	}
}

func TestInsertRejectsNonPositivePrice(t *testing.T) {
	p := newConf(t)

	_, err := p.Insert(context.Background(), products.NewProduct{
		Name: "free", Description: "d", Price: decimal.Zero, Category: "misc", ImageURL: "https://example.com/p.jpg",
	})
	require.Error(t, err)
}

func TestEnsureSeedDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newConf(t)

	require.NoError(t, p.EnsureSeedData(ctx))
	first, err := p.List(ctx, products.Filter{})
	require.NoError(t, err)
	require.Len(t, first, 5)

	require.NoError(t, p.EnsureSeedData(ctx))
	second, err := p.List(ctx, products.Filter{})
	require.NoError(t, err)
	require.Len(t, second, 5)
}
