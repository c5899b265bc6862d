package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	catalogRepo "bengkelbot/database/repository/catalog"
	"bengkelbot/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	catalogCacheKey = "catalog:services"
	catalogCacheTTL = 10 * time.Minute
)

// ErrUnknownSize is returned when a priced service has no entry for the
// requested size.
var ErrUnknownSize = errors.New("unknown size for service")

// CatalogService exposes the workshop's service catalog.
type CatalogService interface {
	ListServices(ctx context.Context) ([]models.ServiceItem, error)
	GetService(ctx context.Context, name string) (*models.ServiceItem, error)
	PriceFor(ctx context.Context, name, size string) (float64, error)
	Invalidate(ctx context.Context)
}

// DefaultCatalogService implements CatalogService with a Redis read-through
// cache in front of the repository. A nil cache client degrades to direct
// repository reads.
type DefaultCatalogService struct {
	Repo   catalogRepo.CatalogRepository
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewDefaultCatalogService returns a catalog service backed by the given
// repository and cache client.
func NewDefaultCatalogService(repo catalogRepo.CatalogRepository, cache *redis.Client, logger *zap.Logger) *DefaultCatalogService {
	return &DefaultCatalogService{Repo: repo, Cache: cache, Logger: logger}
}

// ListServices returns the full catalog, served from cache when warm.
func (s *DefaultCatalogService) ListServices(ctx context.Context) ([]models.ServiceItem, error) {
	if items, ok := s.cachedList(ctx); ok {
		return items, nil
	}
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	s.storeList(ctx, items)
	return items, nil
}

// GetService resolves a catalog entry by case-insensitive name.
func (s *DefaultCatalogService) GetService(ctx context.Context, name string) (*models.ServiceItem, error) {
	items, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	wanted := strings.ToLower(strings.TrimSpace(name))
	for i := range items {
		if strings.ToLower(items[i].Name) == wanted {
			return &items[i], nil
		}
	}
	return nil, catalogRepo.ErrServiceNotFound
}

// PriceFor resolves the price of a service for a given size. Services with a
// single flat price ignore the size argument; multi-size services require one.
func (s *DefaultCatalogService) PriceFor(ctx context.Context, name, size string) (float64, error) {
	item, err := s.GetService(ctx, name)
	if err != nil {
		return 0, err
	}
	if len(item.Prices) == 0 {
		return 0, fmt.Errorf("service %q has no price list", item.Name)
	}
	if len(item.Prices) == 1 {
		for _, price := range item.Prices {
			return price, nil
		}
	}

	wanted := strings.ToLower(strings.TrimSpace(size))
	for key, price := range item.Prices {
		if strings.ToLower(key) == wanted {
			return price, nil
		}
	}
	return 0, fmt.Errorf("%w: %q offers sizes %s", ErrUnknownSize, item.Name, strings.Join(sizeKeys(item.Prices), ", "))
}

// Invalidate drops the cached catalog so the next read hits the repository.
func (s *DefaultCatalogService) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, catalogCacheKey).Err(); err != nil {
		s.Logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *DefaultCatalogService) cachedList(ctx context.Context) ([]models.ServiceItem, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, err := s.Cache.Get(ctx, catalogCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.Logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []models.ServiceItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.Logger.Warn("catalog cache entry corrupt, dropping", zap.Error(err))
		s.Cache.Del(ctx, catalogCacheKey)
		return nil, false
	}
	return items, true
}

func (s *DefaultCatalogService) storeList(ctx context.Context, items []models.ServiceItem) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, catalogCacheKey, raw, catalogCacheTTL).Err(); err != nil {
		s.Logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

func sizeKeys(prices map[string]float64) []string {
	keys := make([]string, 0, len(prices))
	for key := range prices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
