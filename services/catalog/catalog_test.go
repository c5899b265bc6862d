package catalog

import (
	"context"
	"testing"

	catalogRepo "bengkelbot/database/repository/catalog"
	"bengkelbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCatalogRepo struct {
	items     []models.ServiceItem
	listCalls int
}

func (r *stubCatalogRepo) List(ctx context.Context) ([]models.ServiceItem, error) {
	r.listCalls++
	return r.items, nil
}

func (r *stubCatalogRepo) GetByName(ctx context.Context, name string) (*models.ServiceItem, error) {
	for i := range r.items {
		if r.items[i].Name == name {
			return &r.items[i], nil
		}
	}
	return nil, catalogRepo.ErrServiceNotFound
}

func testCatalog() *stubCatalogRepo {
	return &stubCatalogRepo{items: []models.ServiceItem{
		{
			ID:              "svc-1",
			Name:            "Repaint Full Body",
			Category:        models.CategoryRepaint,
			EstimatedDays:   5,
			DurationMinutes: 480,
			Prices:          map[string]float64{"S": 400000, "M": 500000, "L": 650000},
		},
		{
			ID:              "svc-2",
			Name:            "Ganti Oli",
			Category:        models.CategoryOther,
			DurationMinutes: 30,
			Prices:          map[string]float64{"flat": 75000},
		},
	}}
}

func TestGetServiceIsCaseInsensitive(t *testing.T) {
	svc := NewDefaultCatalogService(testCatalog(), nil, zap.NewNop())

	item, err := svc.GetService(context.Background(), "  repaint full body ")
	require.NoError(t, err)
	assert.Equal(t, "svc-1", item.ID)
}

func TestGetServiceUnknownName(t *testing.T) {
	svc := NewDefaultCatalogService(testCatalog(), nil, zap.NewNop())

	_, err := svc.GetService(context.Background(), "cuci helm")
	assert.ErrorIs(t, err, catalogRepo.ErrServiceNotFound)
}

func TestPriceForSizedService(t *testing.T) {
	svc := NewDefaultCatalogService(testCatalog(), nil, zap.NewNop())

	price, err := svc.PriceFor(context.Background(), "Repaint Full Body", "m")
	require.NoError(t, err)
	assert.Equal(t, 500000.0, price)
}

func TestPriceForFlatPriceIgnoresSize(t *testing.T) {
	svc := NewDefaultCatalogService(testCatalog(), nil, zap.NewNop())

	price, err := svc.PriceFor(context.Background(), "Ganti Oli", "XL")
	require.NoError(t, err)
	assert.Equal(t, 75000.0, price)
}

func TestPriceForUnknownSizeListsOptions(t *testing.T) {
	svc := NewDefaultCatalogService(testCatalog(), nil, zap.NewNop())

	_, err := svc.PriceFor(context.Background(), "Repaint Full Body", "XXL")
	require.ErrorIs(t, err, ErrUnknownSize)
	assert.Contains(t, err.Error(), "L, M, S")
}

func TestListServicesWithoutCacheHitsRepoEachTime(t *testing.T) {
	repo := testCatalog()
	svc := NewDefaultCatalogService(repo, nil, zap.NewNop())

	_, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	_, err = svc.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}
