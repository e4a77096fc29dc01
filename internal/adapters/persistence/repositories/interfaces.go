package repositories

import (
	"context"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	SetRoles(ctx context.Context, user *models.User, roles []models.Role) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RoleRepository defines role repository interface. The role set is closed;
// only reads are exposed.
type RoleRepository interface {
	List(ctx context.Context) ([]*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Role, error)
}

// ResetTokenRepository defines password reset token repository interface
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PlafondRepository defines plafond product repository interface
type PlafondRepository interface {
	Create(ctx context.Context, plafond *models.Plafond) error
	GetByID(ctx context.Context, id uint) (*models.Plafond, error)
	Update(ctx context.Context, plafond *models.Plafond) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.Plafond, error)
	ListActive(ctx context.Context) ([]*models.Plafond, error)
}

// TenorRateRepository defines tenor rate repository interface
type TenorRateRepository interface {
	Create(ctx context.Context, rate *models.TenorRate) error
	GetByID(ctx context.Context, id uint) (*models.TenorRate, error)
	Update(ctx context.Context, rate *models.TenorRate) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.TenorRate, error)
	ListByPlafond(ctx context.Context, plafondID uint) ([]*models.TenorRate, error)
	GetActiveRate(ctx context.Context, plafondID uint, tenorMonths int) (*models.TenorRate, error)
}

// ApplicationRepository defines plafond application repository interface
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.PlafondApplication) error
	GetByID(ctx context.Context, id uint) (*models.PlafondApplication, error)
	List(ctx context.Context) ([]*models.PlafondApplication, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]*models.PlafondApplication, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.PlafondApplication, error)
	HasOpenApplication(ctx context.Context, userID uint) (bool, error)

	// TransitionStatus atomically applies updates iff the row still holds the
	// expected status. Returns false when another actor won the race.
	TransitionStatus(ctx context.Context, id uint, from, to domain.ApplicationStatus, updates map[string]interface{}) (bool, error)

	// ReserveLimit atomically grows used_amount iff the remaining limit covers
	// the amount. Returns false when capacity is insufficient.
	ReserveLimit(ctx context.Context, id uint, amount float64) (bool, error)

	// ReleaseLimit gives reserved capacity back after a cancellation
	ReleaseLimit(ctx context.Context, id uint, amount float64) error
}

// DisbursementRepository defines disbursement repository interface
type DisbursementRepository interface {
	Create(ctx context.Context, d *models.Disbursement) error
	GetByID(ctx context.Context, id uint) (*models.Disbursement, error)
	List(ctx context.Context) ([]*models.Disbursement, error)
	ListByStatus(ctx context.Context, status domain.DisbursementStatus) ([]*models.Disbursement, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Disbursement, error)

	// TransitionStatus atomically applies updates iff the row still holds the
	// expected status. Returns false when another actor won the race.
	TransitionStatus(ctx context.Context, id uint, from, to domain.DisbursementStatus, updates map[string]interface{}) (bool, error)
}

// HistoryRepository defines the append-only history log interface
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.PlafondHistory) error
	List(ctx context.Context, limit int) ([]*models.PlafondHistory, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*models.PlafondHistory, error)
}
