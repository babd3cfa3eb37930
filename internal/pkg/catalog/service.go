// Package catalog serves the subscription tiers shown on the landing page.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ManuelReschke/saasbase/internal/pkg/billing"
	"github.com/ManuelReschke/saasbase/internal/pkg/env"
	"github.com/ManuelReschke/saasbase/internal/pkg/metrics"
	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
)

const (
	// CacheKey holds the JSON encoded product list.
	CacheKey = "catalog:products:v1"
	// DefaultTTL is how long a fetched catalog is served before revalidation.
	DefaultTTL = time.Hour
)

// ProductLister fetches the active catalog from the billing provider.
type ProductLister interface {
	ListActiveProducts(ctx context.Context) ([]billing.Product, error)
}

type Service struct {
	products ProductLister
	rdb      *redis.Client
	ttl      time.Duration
	flights  singleflight.Group
}

// NewService creates a catalog service. A nil redis client disables caching.
func NewService(products ProductLister, rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{products: products, rdb: rdb, ttl: ttl}
}

func NewServiceFromEnv(products ProductLister, rdb *redis.Client) *Service {
	return NewService(products, rdb, env.GetDuration("CATALOG_TTL", DefaultTTL))
}

// Products returns the cached catalog, fetching it when the cache is empty,
// expired or unreachable.
func (s *Service) Products(ctx context.Context) ([]billing.Product, error) {
	if cached, ok := s.readCache(ctx); ok {
		metrics.CatalogCache.WithLabelValues(metrics.ResultHit).Inc()
		return cached, nil
	}
	metrics.CatalogCache.WithLabelValues(metrics.ResultMiss).Inc()

	v, err, _ := s.flights.Do(CacheKey, func() (interface{}, error) {
		products, err := s.products.ListActiveProducts(ctx)
		if err != nil {
			return nil, err
		}
		s.writeCache(ctx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]billing.Product), nil
}

// Cards returns the landing page cards.
func (s *Service) Cards(ctx context.Context) ([]viewmodel.PlanCard, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Cards(products), nil
}

// Invalidate drops the cached catalog so the next request refetches it.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, CacheKey).Err()
}

func (s *Service) readCache(ctx context.Context) ([]billing.Product, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, CacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.CatalogCache.WithLabelValues(metrics.ResultError).Inc()
			log.Printf("[Catalog] Cache read failed, fetching live: %v", err)
		}
		return nil, false
	}
	var products []billing.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		log.Printf("[Catalog] Dropping undecodable cache entry: %v", err)
		return nil, false
	}
	return products, true
}

func (s *Service) writeCache(ctx context.Context, products []billing.Product) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		log.Printf("[Catalog] Encoding catalog failed: %v", err)
		return
	}
	if err := s.rdb.Set(ctx, CacheKey, raw, s.ttl).Err(); err != nil {
		log.Printf("[Catalog] Cache write failed: %v", err)
	}
}
