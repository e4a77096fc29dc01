package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Plafond errors
var (
	ErrPlafondNameTaken = errors.New("plafond name already exists")
)

const (
	plafondCatalogKey = "plafond:catalog"
	plafondCatalogTTL = 5 * time.Minute
)

// PlafondService manages the credit-line product catalog. The public catalog
// read is cached in Redis; lifecycle data never is.
type PlafondService struct {
	plafondRepo repositories.PlafondRepository
	cache       *redis.Client
}

// NewPlafondService creates a new plafond service
func NewPlafondService(plafondRepo repositories.PlafondRepository, cache *redis.Client) *PlafondService {
	return &PlafondService{
		plafondRepo: plafondRepo,
		cache:       cache,
	}
}

// PlafondInput represents create/update input for a plafond product
type PlafondInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description"`
	MaxAmount   float64 `json:"maxAmount" validate:"required,gt=0"`
	IsActive    *bool   `json:"isActive"`
}

// ListPublic returns the active catalog, served from cache when warm
func (s *PlafondService) ListPublic(ctx context.Context) ([]*models.Plafond, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, plafondCatalogKey).Result()
		if err == nil {
			var plafonds []*models.Plafond
			if jsonErr := json.Unmarshal([]byte(cached), &plafonds); jsonErr == nil {
				return plafonds, nil
			}
		}
	}

	plafonds, err := s.plafondRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(plafonds); err == nil {
			if err := s.cache.Set(ctx, plafondCatalogKey, data, plafondCatalogTTL).Err(); err != nil {
				log.Printf("⚠️ Failed to cache plafond catalog: %v", err)
			}
		}
	}

	return plafonds, nil
}

// List returns all plafond products, active or not
func (s *PlafondService) List(ctx context.Context) ([]*models.Plafond, error) {
	return s.plafondRepo.List(ctx)
}

// GetByID returns one plafond product
func (s *PlafondService) GetByID(ctx context.Context, id uint) (*models.Plafond, error) {
	plafond, err := s.plafondRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlafondNotFound
		}
		return nil, err
	}
	return plafond, nil
}

// Create adds a new plafond product and invalidates the catalog cache
func (s *PlafondService) Create(ctx context.Context, input *PlafondInput) (*models.Plafond, error) {
	plafond := &models.Plafond{
		Name:        input.Name,
		Description: input.Description,
		MaxAmount:   input.MaxAmount,
		IsActive:    true,
	}
	if input.IsActive != nil {
		plafond.IsActive = *input.IsActive
	}

	if err := s.plafondRepo.Create(ctx, plafond); err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	log.Printf("✅ Plafond created: %s (max %.2f)", plafond.Name, plafond.MaxAmount)
	return plafond, nil
}

// Update modifies a plafond product and invalidates the catalog cache
func (s *PlafondService) Update(ctx context.Context, id uint, input *PlafondInput) (*models.Plafond, error) {
	plafond, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plafond.Name = input.Name
	plafond.Description = input.Description
	plafond.MaxAmount = input.MaxAmount
	if input.IsActive != nil {
		plafond.IsActive = *input.IsActive
	}

	if err := s.plafondRepo.Update(ctx, plafond); err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	return plafond, nil
}

// Delete soft-deletes a plafond product and invalidates the catalog cache
func (s *PlafondService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.plafondRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *PlafondService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, plafondCatalogKey).Err(); err != nil {
		log.Printf("⚠️ Failed to invalidate plafond catalog cache: %v", err)
	}
}
