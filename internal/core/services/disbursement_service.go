package services

import (
	"context"
	"errors"
	"log"
	"time"

	"plafondhub/internal/adapters/events"
	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/pkg/metrics"

	"gorm.io/gorm"
)

// Disbursement errors
var (
	ErrDisbursementNotFound   = errors.New("disbursement not found")
	ErrApplicationNotApproved = errors.New("application is not approved")
	ErrNotApplicationOwner    = errors.New("application belongs to another user")
)

// DisbursementService handles fund-release requests against approved plafonds
type DisbursementService struct {
	disbRepo    repositories.DisbursementRepository
	appRepo     repositories.ApplicationRepository
	rateRepo    repositories.TenorRateRepository
	historyRepo repositories.HistoryRepository
	publisher   *events.Publisher
	metrics     *metrics.Collector
}

// NewDisbursementService creates a new disbursement service
func NewDisbursementService(
	disbRepo repositories.DisbursementRepository,
	appRepo repositories.ApplicationRepository,
	rateRepo repositories.TenorRateRepository,
	historyRepo repositories.HistoryRepository,
	publisher *events.Publisher,
	collector *metrics.Collector,
) *DisbursementService {
	return &DisbursementService{
		disbRepo:    disbRepo,
		appRepo:     appRepo,
		rateRepo:    rateRepo,
		historyRepo: historyRepo,
		publisher:   publisher,
		metrics:     collector,
	}
}

// CreateDisbursementInput represents a customer's fund-release request
type CreateDisbursementInput struct {
	ApplicationID uint    `json:"userPlafondId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	TenorMonths   int     `json:"tenorMonth" validate:"required,gt=0"`
	Note          string  `json:"note"`
}

// ProcessInput carries the optional back-office note for a disbursement
type ProcessInput struct {
	Note string `json:"note"`
}

// CancelInput carries the mandatory cancellation reason
type CancelInput struct {
	Reason string `json:"reason" validate:"required"`
}

// Create validates capacity and pricing, reserves the amount against the
// application's limit and records the pending disbursement.
func (s *DisbursementService) Create(ctx context.Context, userID uint, input *CreateDisbursementInput) (*models.DisbursementResponse, error) {
	app, err := s.appRepo.GetByID(ctx, input.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.UserID != userID {
		return nil, ErrNotApplicationOwner
	}
	if app.Status != domain.StatusApproved {
		return nil, ErrApplicationNotApproved
	}

	// Pricing must resolve before any capacity is reserved
	rate, err := s.rateRepo.GetActiveRate(ctx, app.PlafondID, input.TenorMonths)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRateNotConfigured
		}
		return nil, err
	}

	// Guarded arithmetic update; a false return means the remaining limit
	// cannot cover the amount, regardless of concurrent requests.
	reserved, err := s.appRepo.ReserveLimit(ctx, app.ID, input.Amount)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, domain.ErrInsufficientLimit
	}

	interest := input.Amount * (rate.InterestRate / 100) * (float64(input.TenorMonths) / 12)
	disb := &models.Disbursement{
		ApplicationID:  app.ID,
		Amount:         input.Amount,
		TenorMonths:    input.TenorMonths,
		InterestRate:   rate.InterestRate,
		InterestAmount: interest,
		TotalAmount:    input.Amount + interest,
		Status:         domain.DisbursementPending,
		Note:           input.Note,
	}
	if err := s.disbRepo.Create(ctx, disb); err != nil {
		// Roll the reservation back so capacity is not leaked
		if relErr := s.appRepo.ReleaseLimit(ctx, app.ID, input.Amount); relErr != nil {
			log.Printf("❌ Failed to release reserved limit on application #%d: %v", app.ID, relErr)
		}
		return nil, err
	}

	created, err := s.disbRepo.GetByID(ctx, disb.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Disbursement #%d requested on application #%d (amount %.2f)", disb.ID, app.ID, input.Amount)
	return created.ToResponse(), nil
}

// GetByID returns one disbursement with its relations
func (s *DisbursementService) GetByID(ctx context.Context, id uint) (*models.DisbursementResponse, error) {
	disb, err := s.disbRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDisbursementNotFound
		}
		return nil, err
	}
	return disb.ToResponse(), nil
}

// ListByStatus returns disbursements in a given status, oldest first
func (s *DisbursementService) ListByStatus(ctx context.Context, status domain.DisbursementStatus) ([]*models.DisbursementResponse, error) {
	list, err := s.disbRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return toDisbursementResponses(list), nil
}

// ListByUser returns a customer's own disbursements
func (s *DisbursementService) ListByUser(ctx context.Context, userID uint) ([]*models.DisbursementResponse, error) {
	list, err := s.disbRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDisbursementResponses(list), nil
}

// List returns all disbursements, newest first
func (s *DisbursementService) List(ctx context.Context) ([]*models.DisbursementResponse, error) {
	list, err := s.disbRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDisbursementResponses(list), nil
}

// Process moves PENDING to DISBURSED. Back office marks the funds as released.
func (s *DisbursementService) Process(ctx context.Context, id uint, actor Actor, input *ProcessInput) (*models.DisbursementResponse, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"disbursed_by": actor.ID,
		"disbursed_at": now,
	}
	if input.Note != "" {
		updates["note"] = input.Note
	}
	return s.transition(ctx, id, domain.DisbursementDisbursed, actor, input.Note, updates)
}

// Cancel moves PENDING to CANCELLED and releases the reserved limit. The
// reason is mandatory.
func (s *DisbursementService) Cancel(ctx context.Context, id uint, actor Actor, input *CancelInput) (*models.DisbursementResponse, error) {
	if input.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	now := time.Now()
	updates := map[string]interface{}{
		"disbursed_by":        actor.ID,
		"disbursed_at":        now,
		"cancellation_reason": input.Reason,
	}
	resp, err := s.transition(ctx, id, domain.DisbursementCancelled, actor, input.Reason, updates)
	if err != nil {
		return nil, err
	}

	// Give the reserved capacity back; remainingLimit grows again
	if err := s.appRepo.ReleaseLimit(ctx, resp.UserPlafondID, resp.Amount); err != nil {
		log.Printf("❌ Failed to release limit after cancelling disbursement #%d: %v", id, err)
		return nil, err
	}

	// Re-read so remainingLimit reflects the release
	return s.GetByID(ctx, id)
}

func (s *DisbursementService) transition(
	ctx context.Context,
	id uint,
	to domain.DisbursementStatus,
	actor Actor,
	note string,
	updates map[string]interface{},
) (*models.DisbursementResponse, error) {
	from := domain.DisbursementPending
	if !from.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition
	}

	ok, err := s.disbRepo.TransitionStatus(ctx, id, from, to, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, getErr := s.disbRepo.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, gorm.ErrRecordNotFound) {
				return nil, ErrDisbursementNotFound
			}
			return nil, getErr
		}
		return nil, domain.ErrStaleState
	}

	entry := &models.PlafondHistory{
		EntityType:    models.HistoryEntityDisbursement,
		EntityID:      id,
		NewStatus:     string(to),
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		ActorRole:     string(actor.Role),
		Note:          note,
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to append history for disbursement #%d: %v", id, err)
	}

	if s.metrics != nil {
		s.metrics.RecordDisbursementOutcome(string(to))
	}
	log.Printf("✅ Disbursement #%d: %s → %s by %s", id, from, to, actor.Username)

	disb, err := s.disbRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := disb.ToResponse()

	_ = s.publisher.PublishDisbursementEvent(ctx, events.DisbursementEvent{
		DisbursementID: id,
		ApplicationID:  resp.UserPlafondID,
		NewStatus:      string(to),
		Amount:         resp.Amount,
		ActorID:        actor.ID,
		ActorUsername:  actor.Username,
		Note:           note,
	})

	return resp, nil
}

func toDisbursementResponses(list []*models.Disbursement) []*models.DisbursementResponse {
	out := make([]*models.DisbursementResponse, len(list))
	for i, d := range list {
		out[i] = d.ToResponse()
	}
	return out
}
