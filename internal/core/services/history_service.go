package services

import (
	"context"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"
)

// HistoryService exposes the append-only transition log
type HistoryService struct {
	historyRepo repositories.HistoryRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(historyRepo repositories.HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// List returns the most recent history entries, newest first
func (s *HistoryService) List(ctx context.Context, limit int) ([]*models.PlafondHistory, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.historyRepo.List(ctx, limit)
}

// ListByApplication returns the trail of one application
func (s *HistoryService) ListByApplication(ctx context.Context, applicationID uint) ([]*models.PlafondHistory, error) {
	return s.historyRepo.ListByEntity(ctx, models.HistoryEntityApplication, applicationID)
}

// ListByDisbursement returns the trail of one disbursement
func (s *HistoryService) ListByDisbursement(ctx context.Context, disbursementID uint) ([]*models.PlafondHistory, error) {
	return s.historyRepo.ListByEntity(ctx, models.HistoryEntityDisbursement, disbursementID)
}
