package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/storage/repository"
)

type ProductRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id, language string) (*models.Product, error)
	ListTranslations(ctx context.Context, productID string) ([]models.ProductTranslation, error)
	CreateProduct(ctx context.Context, req models.CreateProductRequest) error
	UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) error
	DeleteProduct(ctx context.Context, id string) error
	UpsertTranslation(ctx context.Context, productID string, req models.TranslationRequest) error
	SetProductAudio(ctx context.Context, productID string, req *models.ProductAudioRequest) error
}

type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CatalogService serves the public product catalog and the admin
// catalog management. Single-product reads go through the cache.
type CatalogService struct {
	products ProductRepository
	cache    Cache
	log      *slog.Logger
}

const productCacheTTL = time.Hour

func NewCatalogService(products ProductRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{products: products, cache: cache, log: log}
}

func productCacheKey(id, language string) string {
	return fmt.Sprintf("product:%s:%s", id, language)
}

// NormalizeLanguage maps any requested language onto the two the
// catalog is translated into, defaulting to Spanish.
func NormalizeLanguage(lang string) string {
	if strings.EqualFold(lang, "EN") {
		return "EN"
	}
	return "ES"
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	filter.Language = NormalizeLanguage(filter.Language)
	return s.products.ListProducts(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id, language string) (*models.Product, error) {
	language = NormalizeLanguage(language)

	var cached *models.Product
	key := productCacheKey(id, language)
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), slog.Any("err", err))
	}
	if found && cached != nil {
		return cached, nil
	}

	product, err := s.products.GetProduct(ctx, id, language)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(key, product, productCacheTTL); err != nil {
		s.log.Warn("cache write failed", slog.String("key", key), slog.Any("err", err))
	}
	return product, nil
}

// GetWithTranslations returns the admin view of a product including
// every stored translation.
func (s *CatalogService) GetWithTranslations(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, id, "ES")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	translations, err := s.products.ListTranslations(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Translations = translations
	return product, nil
}

func (s *CatalogService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := s.products.CreateProduct(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProductExists
		}
		return nil, err
	}
	s.log.Info("created product", slog.String("product_id", req.ID))
	return s.GetWithTranslations(ctx, req.ID)
}

func (s *CatalogService) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	if err := s.products.UpdateProduct(ctx, id, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.invalidateProduct(id)
	return s.GetWithTranslations(ctx, id)
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidateProduct(id)
	s.log.Info("deleted product", slog.String("product_id", id))
	return nil
}

func (s *CatalogService) UpsertTranslation(ctx context.Context, productID string, req models.TranslationRequest) (*models.Product, error) {
	if _, err := s.GetWithTranslations(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.products.UpsertTranslation(ctx, productID, req); err != nil {
		return nil, err
	}
	s.invalidateProduct(productID)
	return s.GetWithTranslations(ctx, productID)
}

// SetAudio attaches or clears the guided-experience track of a
// product.
func (s *CatalogService) SetAudio(ctx context.Context, productID string, req *models.ProductAudioRequest) (*models.Product, error) {
	if err := s.products.SetProductAudio(ctx, productID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.invalidateProduct(productID)
	return s.GetWithTranslations(ctx, productID)
}

func (s *CatalogService) invalidateProduct(id string) {
	for _, lang := range []string{"ES", "EN"} {
		key := productCacheKey(id, lang)
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("cache invalidation failed", slog.String("key", key), slog.Any("err", err))
		}
	}
}
