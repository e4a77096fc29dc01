package services

import (
	"context"
	"errors"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Tenor rate errors
var (
	ErrTenorRateNotFound = errors.New("tenor rate not found")
	ErrTenorRateExists   = errors.New("tenor rate already configured for this plafond and tenor")
)

// TenorRateService manages the per-plafond, per-tenor interest rate table
type TenorRateService struct {
	rateRepo    repositories.TenorRateRepository
	plafondRepo repositories.PlafondRepository
}

// NewTenorRateService creates a new tenor rate service
func NewTenorRateService(
	rateRepo repositories.TenorRateRepository,
	plafondRepo repositories.PlafondRepository,
) *TenorRateService {
	return &TenorRateService{
		rateRepo:    rateRepo,
		plafondRepo: plafondRepo,
	}
}

// TenorRateInput represents create/update input for a tenor rate
type TenorRateInput struct {
	PlafondID    uint    `json:"plafondId" validate:"required"`
	TenorMonths  int     `json:"tenorMonths" validate:"required,gt=0"`
	InterestRate float64 `json:"interestRate" validate:"required,gte=0"`
	Description  string  `json:"description"`
	IsActive     *bool   `json:"isActive"`
}

// GroupedRates is the admin view of rates grouped under their plafond
type GroupedRates struct {
	PlafondID   uint                `json:"plafondId"`
	PlafondName string              `json:"plafondName"`
	Rates       []*models.TenorRate `json:"rates"`
}

// List returns all tenor rates
func (s *TenorRateService) List(ctx context.Context) ([]*models.TenorRate, error) {
	return s.rateRepo.List(ctx)
}

// ListByPlafond returns the rates configured for one plafond
func (s *TenorRateService) ListByPlafond(ctx context.Context, plafondID uint) ([]*models.TenorRate, error) {
	return s.rateRepo.ListByPlafond(ctx, plafondID)
}

// ListGrouped returns tenor rates grouped under their plafond products
func (s *TenorRateService) ListGrouped(ctx context.Context) ([]*GroupedRates, error) {
	plafonds, err := s.plafondRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]*GroupedRates, 0, len(plafonds))
	for _, p := range plafonds {
		rates, err := s.rateRepo.ListByPlafond(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, &GroupedRates{
			PlafondID:   p.ID,
			PlafondName: p.Name,
			Rates:       rates,
		})
	}
	return groups, nil
}

// GetByID returns one tenor rate
func (s *TenorRateService) GetByID(ctx context.Context, id uint) (*models.TenorRate, error) {
	rate, err := s.rateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenorRateNotFound
		}
		return nil, err
	}
	return rate, nil
}

// Create adds a new tenor rate. The (plafond, tenor) pair is unique.
func (s *TenorRateService) Create(ctx context.Context, input *TenorRateInput) (*models.TenorRate, error) {
	if _, err := s.plafondRepo.GetByID(ctx, input.PlafondID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlafondNotFound
		}
		return nil, err
	}

	if _, err := s.rateRepo.GetActiveRate(ctx, input.PlafondID, input.TenorMonths); err == nil {
		return nil, ErrTenorRateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rate := &models.TenorRate{
		PlafondID:    input.PlafondID,
		TenorMonths:  input.TenorMonths,
		InterestRate: input.InterestRate,
		Description:  input.Description,
		IsActive:     true,
	}
	if input.IsActive != nil {
		rate.IsActive = *input.IsActive
	}

	if err := s.rateRepo.Create(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// Update modifies a tenor rate
func (s *TenorRateService) Update(ctx context.Context, id uint, input *TenorRateInput) (*models.TenorRate, error) {
	rate, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rate.PlafondID = input.PlafondID
	rate.TenorMonths = input.TenorMonths
	rate.InterestRate = input.InterestRate
	rate.Description = input.Description
	if input.IsActive != nil {
		rate.IsActive = *input.IsActive
	}

	if err := s.rateRepo.Update(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// Delete soft-deletes a tenor rate. Existing disbursements keep the rate they
// were priced with.
func (s *TenorRateService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.rateRepo.Delete(ctx, id)
}
