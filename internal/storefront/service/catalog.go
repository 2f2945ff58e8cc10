package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/backend"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// Sort orders accepted by ListProducts.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
)

// Cache keys for the backend catalog snapshots.
const (
	cacheKeyProducts   = repository.KeyPrefixCatalog + "products"
	cacheKeyCategories = repository.KeyPrefixCatalog + "categories"
)

// ListProductsInput holds the catalog filter and sort parameters.
type ListProductsInput struct {
	CategoryID int64  `json:"category_id" validate:"gte=0"`
	Query      string `json:"q"`
	Sort       string `json:"sort" validate:"omitempty,oneof=price-asc price-desc name"`
}

// CatalogService serves the product catalog from the backend, with a
// short-lived cached snapshot so browsing does not hit the backend per request.
type CatalogService struct {
	backend *backend.Client
	cache   repository.KeyValueStore
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(backend *backend.Client, cache repository.KeyValueStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		backend: backend,
		cache:   cache,
		logger:  logger,
	}
}

// ListProducts returns the catalog filtered and sorted per the input.
// Filters combine: a product must match both the category and the query.
func (s *CatalogService) ListProducts(ctx context.Context, input ListProductsInput) ([]domain.Product, error) {
	if input.Sort != "" && input.Sort != SortPriceAsc && input.Sort != SortPriceDesc && input.Sort != SortName {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown sort order %q", input.Sort))
	}

	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Product, 0, len(products))
	query := strings.ToLower(strings.TrimSpace(input.Query))
	for _, p := range products {
		if input.CategoryID > 0 && p.CategoryID != input.CategoryID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch input.Sort {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case SortName:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	}

	return filtered, nil
}

// ProductsInCategory returns one category's products straight from the
// backend, bypassing the snapshot cache. Category pages want the freshest
// stock state, not a possibly stale snapshot.
func (s *CatalogService) ProductsInCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	if categoryID <= 0 {
		return nil, apperrors.InvalidInput("category id is required")
	}

	products, err := s.backend.ProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}

	return products, nil
}

// GetProduct returns a single product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.backend.Product(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ListCategories returns the backend's category list, cached.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if raw, err := s.cache.Read(ctx, cacheKeyCategories); err == nil {
		var categories []domain.Category
		if err := json.Unmarshal([]byte(raw), &categories); err == nil {
			return categories, nil
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "category cache read failed", slog.String("error", err.Error()))
	}

	categories, err := s.backend.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	s.writeCache(ctx, cacheKeyCategories, categories)

	return categories, nil
}

func (s *CatalogService) allProducts(ctx context.Context) ([]domain.Product, error) {
	if raw, err := s.cache.Read(ctx, cacheKeyProducts); err == nil {
		var products []domain.Product
		if err := json.Unmarshal([]byte(raw), &products); err == nil {
			return products, nil
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "product cache read failed", slog.String("error", err.Error()))
	}

	products, err := s.backend.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	s.writeCache(ctx, cacheKeyProducts, products)

	return products, nil
}

// writeCache stores a catalog snapshot. A failed cache write only costs the
// next request a backend round trip, so it is logged and not surfaced.
func (s *CatalogService) writeCache(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache marshal failed", slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Write(ctx, key, string(raw)); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
