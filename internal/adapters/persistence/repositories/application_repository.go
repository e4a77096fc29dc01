package repositories

import (
	"context"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"

	"gorm.io/gorm"
)

// applicationRepository implements ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new plafond application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) withPreloads(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Plafond").
		Preload("Reviewer").
		Preload("Approver")
}

// Create creates a new application
func (r *applicationRepository) Create(ctx context.Context, app *models.PlafondApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID with relations preloaded
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.PlafondApplication, error) {
	var app models.PlafondApplication
	err := r.withPreloads(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List lists all applications, newest first
func (r *applicationRepository) List(ctx context.Context) ([]*models.PlafondApplication, error) {
	var apps []*models.PlafondApplication
	err := r.withPreloads(ctx).Order("registered_at DESC").Find(&apps).Error
	return apps, err
}

// ListByStatus lists applications in the given status, oldest first so the
// queue is worked in arrival order
func (r *applicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]*models.PlafondApplication, error) {
	var apps []*models.PlafondApplication
	err := r.withPreloads(ctx).
		Where("status = ?", status).
		Order("registered_at").Find(&apps).Error
	return apps, err
}

// ListByUser lists one applicant's applications
func (r *applicationRepository) ListByUser(ctx context.Context, userID uint) ([]*models.PlafondApplication, error) {
	var apps []*models.PlafondApplication
	err := r.withPreloads(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").Find(&apps).Error
	return apps, err
}

// HasOpenApplication reports whether the user already has a non-terminal
// application in flight
func (r *applicationRepository) HasOpenApplication(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PlafondApplication{}).
		Where("user_id = ? AND status IN ?", userID,
			[]domain.ApplicationStatus{domain.StatusPendingReview, domain.StatusWaitingApproval}).
		Count(&count).Error
	return count > 0, err
}

// TransitionStatus applies updates iff the row still holds the expected
// status. The WHERE guard is the service's whole defense against two actors
// racing on the same application.
func (r *applicationRepository) TransitionStatus(ctx context.Context, id uint, from, to domain.ApplicationStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	result := r.db.WithContext(ctx).Model(&models.PlafondApplication{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReserveLimit grows used_amount iff remaining capacity covers the amount.
// The arithmetic guard keeps remaining limit non-negative under races.
func (r *applicationRepository) ReserveLimit(ctx context.Context, id uint, amount float64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PlafondApplication{}).
		Where("id = ? AND status = ? AND approved_limit - used_amount >= ?",
			id, domain.StatusApproved, amount).
		Update("used_amount", gorm.Expr("used_amount + ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseLimit gives reserved capacity back after a cancellation
func (r *applicationRepository) ReleaseLimit(ctx context.Context, id uint, amount float64) error {
	return r.db.WithContext(ctx).Model(&models.PlafondApplication{}).
		Where("id = ?", id).
		Update("used_amount", gorm.Expr("used_amount - ?", amount)).Error
}
