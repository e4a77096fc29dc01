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

// Application errors
var (
	ErrApplicationNotFound = errors.New("plafond application not found")
	ErrPlafondNotFound     = errors.New("plafond not found")
	ErrPlafondInactive     = errors.New("plafond is not active")
	ErrOpenApplication     = errors.New("user already has an application in progress")
)

// Actor identifies who performed a lifecycle transition. It is built from the
// JWT claims of the authenticated request.
type Actor struct {
	ID       uint
	Username string
	Role     domain.Role
}

// ApplicationService handles the plafond application lifecycle
type ApplicationService struct {
	appRepo     repositories.ApplicationRepository
	plafondRepo repositories.PlafondRepository
	historyRepo repositories.HistoryRepository
	publisher   *events.Publisher
	metrics     *metrics.Collector
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	plafondRepo repositories.PlafondRepository,
	historyRepo repositories.HistoryRepository,
	publisher *events.Publisher,
	collector *metrics.Collector,
) *ApplicationService {
	return &ApplicationService{
		appRepo:     appRepo,
		plafondRepo: plafondRepo,
		historyRepo: historyRepo,
		publisher:   publisher,
		metrics:     collector,
	}
}

// ApplyInput represents a customer's plafond application submission
type ApplyInput struct {
	PlafondID     uint     `json:"plafondId" validate:"required"`
	NIK           string   `json:"nik" validate:"required,len=16,numeric"`
	BirthPlace    string   `json:"birthPlace" validate:"required"`
	BirthDate     string   `json:"birthDate" validate:"required"`
	MaritalStatus string   `json:"maritalStatus"`
	Occupation    string   `json:"occupation" validate:"required"`
	MonthlyIncome float64  `json:"monthlyIncome" validate:"required,gt=0"`
	Phone         string   `json:"phone" validate:"required"`
	NPWP          string   `json:"npwp"`
	BankName      string   `json:"bankName"`
	AccountNumber string   `json:"accountNumber"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

// ReviewInput represents the marketing review step
type ReviewInput struct {
	Note string `json:"note"`
}

// ApproveInput represents the branch manager decision
type ApproveInput struct {
	ApprovedLimit float64 `json:"approvedLimit" validate:"required,gt=0"`
	Note          string  `json:"note"`
}

// RejectInput represents a rejection and its optional note
type RejectInput struct {
	Note string `json:"note"`
}

// Apply submits a new application. One open application per user at a time.
func (s *ApplicationService) Apply(ctx context.Context, userID uint, input *ApplyInput) (*models.ApplicationResponse, error) {
	plafond, err := s.plafondRepo.GetByID(ctx, input.PlafondID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlafondNotFound
		}
		return nil, err
	}
	if !plafond.IsActive {
		return nil, ErrPlafondInactive
	}

	open, err := s.appRepo.HasOpenApplication(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrOpenApplication
	}

	app := &models.PlafondApplication{
		UserID:        userID,
		PlafondID:     input.PlafondID,
		Status:        domain.StatusPendingReview,
		NIK:           input.NIK,
		BirthPlace:    input.BirthPlace,
		BirthDate:     input.BirthDate,
		MaritalStatus: input.MaritalStatus,
		Occupation:    input.Occupation,
		MonthlyIncome: input.MonthlyIncome,
		Phone:         input.Phone,
		NPWP:          input.NPWP,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	created, err := s.appRepo.GetByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Application #%d submitted (user %d, plafond %s)", app.ID, userID, plafond.Name)
	return created.ToResponse(), nil
}

// GetByID returns one application with its relations
func (s *ApplicationService) GetByID(ctx context.Context, id uint) (*models.ApplicationResponse, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app.ToResponse(), nil
}

// ListByStatus returns applications in a given status, oldest first
func (s *ApplicationService) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]*models.ApplicationResponse, error) {
	apps, err := s.appRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

// ListByUser returns a customer's own applications
func (s *ApplicationService) ListByUser(ctx context.Context, userID uint) ([]*models.ApplicationResponse, error) {
	apps, err := s.appRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

// List returns all applications, newest first
func (s *ApplicationService) List(ctx context.Context) ([]*models.ApplicationResponse, error) {
	apps, err := s.appRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

// Review moves PENDING_REVIEW to WAITING_APPROVAL. Marketing step.
func (s *ApplicationService) Review(ctx context.Context, id uint, actor Actor, input *ReviewInput) (*models.ApplicationResponse, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"reviewed_by": actor.ID,
		"reviewed_at": now,
		"review_note": input.Note,
	}
	return s.transition(ctx, id, domain.StatusPendingReview, domain.StatusWaitingApproval, actor, input.Note, updates)
}

// RejectReview moves PENDING_REVIEW to REJECTED. The note is optional.
func (s *ApplicationService) RejectReview(ctx context.Context, id uint, actor Actor, input *RejectInput) (*models.ApplicationResponse, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"reviewed_by":    actor.ID,
		"reviewed_at":    now,
		"rejection_note": input.Note,
	}
	return s.transition(ctx, id, domain.StatusPendingReview, domain.StatusRejected, actor, input.Note, updates)
}

// Approve moves WAITING_APPROVAL to APPROVED with the granted limit. The limit
// must stay within (0, plafond.MaxAmount].
func (s *ApplicationService) Approve(ctx context.Context, id uint, actor Actor, input *ApproveInput) (*models.ApplicationResponse, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if input.ApprovedLimit <= 0 {
		return nil, domain.ErrLimitOutOfRange
	}
	if app.Plafond != nil && input.ApprovedLimit > app.Plafond.MaxAmount {
		return nil, domain.ErrLimitOutOfRange
	}

	now := time.Now()
	updates := map[string]interface{}{
		"approved_by":    actor.ID,
		"approved_at":    now,
		"approval_note":  input.Note,
		"approved_limit": input.ApprovedLimit,
	}
	resp, err := s.transition(ctx, id, domain.StatusWaitingApproval, domain.StatusApproved, actor, input.Note, updates)
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, resp, actor, input.Note, input.ApprovedLimit)
	return resp, nil
}

// RejectApproval moves WAITING_APPROVAL to REJECTED. Branch manager step.
func (s *ApplicationService) RejectApproval(ctx context.Context, id uint, actor Actor, input *RejectInput) (*models.ApplicationResponse, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"approved_by":    actor.ID,
		"approved_at":    now,
		"rejection_note": input.Note,
	}
	return s.transition(ctx, id, domain.StatusWaitingApproval, domain.StatusRejected, actor, input.Note, updates)
}

// transition applies a guarded status change, appends the history row and
// records metrics. A lost race surfaces as ErrStaleState with no side effects.
func (s *ApplicationService) transition(
	ctx context.Context,
	id uint,
	from, to domain.ApplicationStatus,
	actor Actor,
	note string,
	updates map[string]interface{},
) (*models.ApplicationResponse, error) {
	if !from.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition
	}

	ok, err := s.appRepo.TransitionStatus(ctx, id, from, to, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if !ok {
		// Another actor moved the row first, or the id does not exist
		if _, getErr := s.appRepo.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, gorm.ErrRecordNotFound) {
				return nil, ErrApplicationNotFound
			}
			return nil, getErr
		}
		return nil, domain.ErrStaleState
	}

	entry := &models.PlafondHistory{
		EntityType:    models.HistoryEntityApplication,
		EntityID:      id,
		NewStatus:     string(to),
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		ActorRole:     string(actor.Role),
		Note:          note,
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to append history for application #%d: %v", id, err)
	}

	if s.metrics != nil {
		s.metrics.RecordApplicationTransition(string(to))
	}
	log.Printf("✅ Application #%d: %s → %s by %s", id, from, to, actor.Username)

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := app.ToResponse()

	if to != domain.StatusApproved {
		// Approved transitions publish from Approve so the limit rides along
		s.publishTransition(ctx, resp, actor, note, 0)
	}
	return resp, nil
}

func (s *ApplicationService) publishTransition(ctx context.Context, app *models.ApplicationResponse, actor Actor, note string, approvedLimit float64) {
	event := events.ApplicationEvent{
		ApplicationID: app.ID,
		NewStatus:     string(app.Status),
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		ActorRole:     string(actor.Role),
		Note:          note,
		ApprovedLimit: approvedLimit,
	}
	// The transition is already committed; publish failures only log
	_ = s.publisher.PublishApplicationEvent(ctx, event)
}

func toApplicationResponses(apps []*models.PlafondApplication) []*models.ApplicationResponse {
	out := make([]*models.ApplicationResponse, len(apps))
	for i, a := range apps {
		out[i] = a.ToResponse()
	}
	return out
}
