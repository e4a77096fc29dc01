package repositories

import (
	"context"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"

	"gorm.io/gorm"
)

// disbursementRepository implements DisbursementRepository interface
type disbursementRepository struct {
	db *gorm.DB
}

// NewDisbursementRepository creates a new disbursement repository
func NewDisbursementRepository(db *gorm.DB) DisbursementRepository {
	return &disbursementRepository{db: db}
}

func (r *disbursementRepository) withPreloads(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Application").
		Preload("Application.User").
		Preload("Application.Plafond").
		Preload("Processor")
}

// Create creates a new disbursement request
func (r *disbursementRepository) Create(ctx context.Context, d *models.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// GetByID gets a disbursement by ID with relations preloaded
func (r *disbursementRepository) GetByID(ctx context.Context, id uint) (*models.Disbursement, error) {
	var d models.Disbursement
	err := r.withPreloads(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List lists all disbursements, newest first
func (r *disbursementRepository) List(ctx context.Context) ([]*models.Disbursement, error) {
	var ds []*models.Disbursement
	err := r.withPreloads(ctx).Order("requested_at DESC").Find(&ds).Error
	return ds, err
}

// ListByStatus lists disbursements in the given status, oldest first
func (r *disbursementRepository) ListByStatus(ctx context.Context, status domain.DisbursementStatus) ([]*models.Disbursement, error) {
	var ds []*models.Disbursement
	err := r.withPreloads(ctx).
		Where("status = ?", status).
		Order("requested_at").Find(&ds).Error
	return ds, err
}

// ListByUser lists disbursements belonging to one applicant's applications
func (r *disbursementRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Disbursement, error) {
	var ds []*models.Disbursement
	err := r.withPreloads(ctx).
		Joins("JOIN plafond_applications ON plafond_applications.id = disbursements.application_id").
		Where("plafond_applications.user_id = ?", userID).
		Order("disbursements.requested_at DESC").Find(&ds).Error
	return ds, err
}

// TransitionStatus applies updates iff the row still holds the expected status
func (r *disbursementRepository) TransitionStatus(ctx context.Context, id uint, from, to domain.DisbursementStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	result := r.db.WithContext(ctx).Model(&models.Disbursement{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// historyRepository implements HistoryRepository interface
type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Append writes one log row. Rows are never updated or deleted.
func (r *historyRepository) Append(ctx context.Context, entry *models.PlafondHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List lists recent history rows, newest first
func (r *historyRepository) List(ctx context.Context, limit int) ([]*models.PlafondHistory, error) {
	var entries []*models.PlafondHistory
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

// ListByEntity lists the full trail of one entity, oldest first
func (r *historyRepository) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*models.PlafondHistory, error) {
	var entries []*models.PlafondHistory
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at").Find(&entries).Error
	return entries, err
}
