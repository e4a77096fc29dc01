package repositories

import (
	"context"

	"plafondhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// plafondRepository implements PlafondRepository interface
type plafondRepository struct {
	db *gorm.DB
}

// NewPlafondRepository creates a new plafond repository
func NewPlafondRepository(db *gorm.DB) PlafondRepository {
	return &plafondRepository{db: db}
}

// Create creates a new plafond
func (r *plafondRepository) Create(ctx context.Context, plafond *models.Plafond) error {
	return r.db.WithContext(ctx).Create(plafond).Error
}

// GetByID gets a plafond by ID
func (r *plafondRepository) GetByID(ctx context.Context, id uint) (*models.Plafond, error) {
	var plafond models.Plafond
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plafond).Error
	if err != nil {
		return nil, err
	}
	return &plafond, nil
}

// Update updates a plafond
func (r *plafondRepository) Update(ctx context.Context, plafond *models.Plafond) error {
	return r.db.WithContext(ctx).Save(plafond).Error
}

// Delete soft deletes a plafond
func (r *plafondRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Plafond{}, id).Error
}

// List lists all plafonds
func (r *plafondRepository) List(ctx context.Context) ([]*models.Plafond, error) {
	var plafonds []*models.Plafond
	err := r.db.WithContext(ctx).Order("max_amount").Find(&plafonds).Error
	return plafonds, err
}

// ListActive lists active plafonds only (public catalog)
func (r *plafondRepository) ListActive(ctx context.Context) ([]*models.Plafond, error) {
	var plafonds []*models.Plafond
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("max_amount").Find(&plafonds).Error
	return plafonds, err
}

// tenorRateRepository implements TenorRateRepository interface
type tenorRateRepository struct {
	db *gorm.DB
}

// NewTenorRateRepository creates a new tenor rate repository
func NewTenorRateRepository(db *gorm.DB) TenorRateRepository {
	return &tenorRateRepository{db: db}
}

// Create creates a new tenor rate
func (r *tenorRateRepository) Create(ctx context.Context, rate *models.TenorRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// GetByID gets a tenor rate by ID
func (r *tenorRateRepository) GetByID(ctx context.Context, id uint) (*models.TenorRate, error) {
	var rate models.TenorRate
	err := r.db.WithContext(ctx).Preload("Plafond").Where("id = ?", id).First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// Update updates a tenor rate
func (r *tenorRateRepository) Update(ctx context.Context, rate *models.TenorRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

// Delete soft deletes a tenor rate
func (r *tenorRateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.TenorRate{}, id).Error
}

// List lists all tenor rates with their plafond
func (r *tenorRateRepository) List(ctx context.Context) ([]*models.TenorRate, error) {
	var rates []*models.TenorRate
	err := r.db.WithContext(ctx).Preload("Plafond").
		Order("plafond_id, tenor_months").Find(&rates).Error
	return rates, err
}

// ListByPlafond lists rates for one plafond
func (r *tenorRateRepository) ListByPlafond(ctx context.Context, plafondID uint) ([]*models.TenorRate, error) {
	var rates []*models.TenorRate
	err := r.db.WithContext(ctx).Preload("Plafond").
		Where("plafond_id = ?", plafondID).
		Order("tenor_months").Find(&rates).Error
	return rates, err
}

// GetActiveRate resolves the active rate for a plafond and tenor
func (r *tenorRateRepository) GetActiveRate(ctx context.Context, plafondID uint, tenorMonths int) (*models.TenorRate, error) {
	var rate models.TenorRate
	err := r.db.WithContext(ctx).
		Where("plafond_id = ? AND tenor_months = ? AND is_active = ?", plafondID, tenorMonths, true).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
