package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petmarket/catalog/internal/cache"
	"petmarket/catalog/internal/domain"
	"petmarket/catalog/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

var (
	ErrBreedNotFound = errors.New("breed not found")
	ErrInvalidBreed  = errors.New("invalid breed")
)

const localBreedListKey = "breed_list"

// Service serves the breed catalog from the fastest tier that has it:
// process memory, then Redis, then PostgreSQL.
type Service struct {
	repository repository.BreedRepository
	cache      cache.BreedCache
	local      *gocache.Cache
}

func NewService(
	repository repository.BreedRepository,
	cache cache.BreedCache,
	localTTL time.Duration,
	cleanupInterval time.Duration,
) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		local:      gocache.New(localTTL, cleanupInterval),
	}
}

func (s *Service) ListBreeds(ctx context.Context) ([]domain.Breed, error) {
	if value, found := s.local.Get(localBreedListKey); found {
		if breeds, ok := value.([]domain.Breed); ok {
			return breeds, nil
		}
	}

	breeds, found, err := s.cache.GetBreedList(ctx)
	if err != nil {
		log.Warnf("⚠️ Breed cache unavailable, falling back to database: %v", err)
	}
	if found {
		s.local.SetDefault(localBreedListKey, breeds)
		return breeds, nil
	}

	breeds, err = s.repository.ListBreeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list breeds: %w", err)
	}
	if breeds == nil {
		breeds = make([]domain.Breed, 0)
	}

	if err := s.cache.SetBreedList(ctx, breeds); err != nil {
		log.Warnf("⚠️ Failed to store breed list in cache: %v", err)
	}
	s.local.SetDefault(localBreedListKey, breeds)

	log.Debugf("Loaded %d breeds from database", len(breeds))
	return breeds, nil
}

func (s *Service) GetBreedByCode(ctx context.Context, code string) (*domain.Breed, error) {
	breed, err := s.repository.GetBreedByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get breed: %w", err)
	}
	if breed == nil {
		return nil, fmt.Errorf("%w: %s", ErrBreedNotFound, code)
	}

	return breed, nil
}

// ImportBreeds validates and stores breeds, then drops every cached copy of
// the breed list.
func (s *Service) ImportBreeds(ctx context.Context, breeds []domain.Breed) error {
	for i, breed := range breeds {
		if breed.Code == "" || breed.DisplayName == "" || breed.CategoryCode == "" {
			return fmt.Errorf("%w: entry %d needs code, displayName and categoryCode", ErrInvalidBreed, i)
		}
	}

	if err := s.repository.SaveBreeds(ctx, breeds); err != nil {
		return fmt.Errorf("failed to import breeds: %w", err)
	}

	s.local.Delete(localBreedListKey)
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warnf("⚠️ Failed to invalidate breed cache: %v", err)
	}

	categories, _ := domain.GroupByCategory(breeds)
	log.Infof("✅ Imported %d breeds in %d categories", len(breeds), len(categories))
	return nil
}
