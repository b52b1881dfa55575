package app

import (
	"context"
	"fmt"
	"time"

	"pinecove/internal/domain"
)

const (
	unitsKey    = "units:all"
	servicesKey = "services:all"
)

// CatalogService serves the accommodation and add-on catalog with
// cache-aside reads. Writes invalidate the affected keys.
type CatalogService struct {
	repo     domain.CatalogRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(r domain.CatalogRepository, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl}
}

func unitKey(id int64) string { return fmt.Sprintf("unit:%d", id) }

func (s *CatalogService) GetUnit(ctx context.Context, id int64) (domain.Unit, error) {
	key := unitKey(id)
	var u domain.Unit
	if ok, _ := s.cache.Get(ctx, key, &u); ok {
		return u, nil
	}
	u, err := s.repo.GetUnit(ctx, id)
	if err != nil {
		return domain.Unit{}, err
	}
	_ = s.cache.Set(ctx, key, u, int(s.cacheTTL.Seconds()))
	return u, nil
}

func (s *CatalogService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	var units []domain.Unit
	if ok, _ := s.cache.Get(ctx, unitsKey, &units); ok {
		return units, nil
	}
	units, err := s.repo.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, unitsKey, units, int(s.cacheTTL.Seconds()))
	return units, nil
}

func (s *CatalogService) CreateUnit(ctx context.Context, u domain.Unit) (domain.Unit, error) {
	if u.Name == "" || !u.Kind.Valid() || u.Capacity <= 0 {
		return domain.Unit{}, domain.ErrInvalidInput
	}
	if u.InstanceCount <= 0 {
		u.InstanceCount = 1
	}
	for _, t := range u.Tariffs {
		if !t.Category.Valid() || t.BasePrice < 0 || t.ExtraBedPrice < 0 {
			return domain.Unit{}, domain.ErrInvalidInput
		}
	}
	id, err := s.repo.CreateUnit(ctx, u)
	if err != nil {
		return domain.Unit{}, err
	}
	_ = s.cache.Del(ctx, unitsKey)
	return s.repo.GetUnit(ctx, id)
}

func (s *CatalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	var svcs []domain.Service
	if ok, _ := s.cache.Get(ctx, servicesKey, &svcs); ok {
		return svcs, nil
	}
	svcs, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, servicesKey, svcs, int(s.cacheTTL.Seconds()))
	return svcs, nil
}

func (s *CatalogService) CreateService(ctx context.Context, sv domain.Service) (domain.Service, error) {
	if sv.Name == "" {
		return domain.Service{}, domain.ErrInvalidInput
	}
	for _, p := range sv.Prices {
		if !p.Category.Valid() || p.Price < 0 {
			return domain.Service{}, domain.ErrInvalidInput
		}
	}
	id, err := s.repo.CreateService(ctx, sv)
	if err != nil {
		return domain.Service{}, err
	}
	_ = s.cache.Del(ctx, servicesKey)
	return s.repo.GetService(ctx, id)
}
