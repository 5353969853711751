package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
)

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) GetProduct(ctx context.Context, id, language string) (*models.Product, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *ProductRepoMock) ListTranslations(ctx context.Context, productID string) ([]models.ProductTranslation, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]models.ProductTranslation), args.Error(1)
}

func (m *ProductRepoMock) CreateProduct(ctx context.Context, req models.CreateProductRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *ProductRepoMock) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *ProductRepoMock) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepoMock) UpsertTranslation(ctx context.Context, productID string, req models.TranslationRequest) error {
	return m.Called(ctx, productID, req).Error(0)
}

func (m *ProductRepoMock) SetProductAudio(ctx context.Context, productID string, req *models.ProductAudioRequest) error {
	return m.Called(ctx, productID, req).Error(0)
}

// fakeCache keeps entries in a map and round-trips values through JSON
// the way the redis cache does.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(key string, result any) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Invalidate(key string) error {
	delete(c.entries, key)
	return nil
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "EN", NormalizeLanguage("en"))
	assert.Equal(t, "EN", NormalizeLanguage("EN"))
	assert.Equal(t, "ES", NormalizeLanguage("es"))
	assert.Equal(t, "ES", NormalizeLanguage(""))
	assert.Equal(t, "ES", NormalizeLanguage("fr"))
}

func TestCatalogService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("second read hits the cache", func(t *testing.T) {
		repo := new(ProductRepoMock)
		repo.On("GetProduct", ctx, "lavender", "ES").Return(&models.Product{
			ID: "lavender", Name: "Vela Lavanda", Price: 18,
		}, nil).Once()

		svc := NewCatalogService(repo, newFakeCache(), newTestLogger())

		first, err := svc.Get(ctx, "lavender", "es")
		require.NoError(t, err)
		second, err := svc.Get(ctx, "lavender", "es")
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		repo.AssertNumberOfCalls(t, "GetProduct", 1)
	})

	t.Run("languages are cached separately", func(t *testing.T) {
		repo := new(ProductRepoMock)
		repo.On("GetProduct", ctx, "lavender", "ES").Return(&models.Product{ID: "lavender", Name: "Vela Lavanda"}, nil)
		repo.On("GetProduct", ctx, "lavender", "EN").Return(&models.Product{ID: "lavender", Name: "Lavender Candle"}, nil)

		svc := NewCatalogService(repo, newFakeCache(), newTestLogger())

		es, err := svc.Get(ctx, "lavender", "es")
		require.NoError(t, err)
		en, err := svc.Get(ctx, "lavender", "en")
		require.NoError(t, err)

		assert.Equal(t, "Vela Lavanda", es.Name)
		assert.Equal(t, "Lavender Candle", en.Name)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(ProductRepoMock)
		repo.On("GetProduct", ctx, "missing", "ES").Return(nil, sql.ErrNoRows)

		svc := NewCatalogService(repo, newFakeCache(), newTestLogger())
		_, err := svc.Get(ctx, "missing", "es")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCatalogService_Update_InvalidatesCache(t *testing.T) {
	ctx := context.Background()

	repo := new(ProductRepoMock)
	repo.On("GetProduct", ctx, "lavender", "ES").Return(&models.Product{
		ID: "lavender", Name: "Vela Lavanda",
	}, nil)
	repo.On("ListTranslations", ctx, "lavender").Return([]models.ProductTranslation{}, nil)
	repo.On("UpdateProduct", ctx, "lavender", mock.Anything).Return(nil)

	cache := newFakeCache()
	svc := NewCatalogService(repo, cache, newTestLogger())

	_, err := svc.Get(ctx, "lavender", "es")
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "product:lavender:ES")

	_, err = svc.Update(ctx, "lavender", models.UpdateProductRequest{})
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, "product:lavender:ES")
}
