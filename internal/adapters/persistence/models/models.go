package models

import (
	"time"

	"gorm.io/gorm"

	"plafondhub/internal/core/domain"
)

// ============================================================
// Auth & User Tables
// ============================================================

// Role represents the roles table. The set is closed and seeded at boot;
// rows are never created through the API.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:30;not null" json:"name"`
	Description string `gorm:"size:200" json:"description,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// User represents the users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FullName  string         `gorm:"size:100" json:"full_name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	Roles     []Role         `gorm:"many2many:user_roles" json:"roles"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames returns the user's role names in stored order
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

// RoleSet returns the user's roles as a domain RoleSet
func (u *User) RoleSet() domain.RoleSet {
	return domain.ParseRoleSet(u.RoleNames())
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
}

// PasswordResetToken represents the password_reset_tokens table. Only the
// SHA256 hash of the token is stored; the raw value travels in the reset mail.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}

func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Plafond represents a credit-line product (tier) with its approvable ceiling
type Plafond struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	MaxAmount   float64        `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Plafond) TableName() string {
	return "plafonds"
}

// TenorRate represents the per-plafond, per-tenor interest rate table.
// Resolution against this table is the source of truth for pricing.
type TenorRate struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PlafondID    uint           `gorm:"not null;uniqueIndex:idx_plafond_tenor" json:"plafond_id"`
	TenorMonths  int            `gorm:"not null;uniqueIndex:idx_plafond_tenor" json:"tenor_months"`
	InterestRate float64        `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	Description  string         `gorm:"size:200" json:"description,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Plafond *Plafond `gorm:"foreignKey:PlafondID" json:"plafond,omitempty"`
}

func (TenorRate) TableName() string {
	return "tenor_rates"
}

// ============================================================
// Main Tables
// ============================================================

// PlafondApplication represents one applicant's request against a plafond,
// tracked through review and approval.
type PlafondApplication struct {
	ID        uint                     `gorm:"primaryKey" json:"id"`
	UserID    uint                     `gorm:"not null;index" json:"user_id"`
	PlafondID uint                     `gorm:"not null;index" json:"plafond_id"`
	Status    domain.ApplicationStatus `gorm:"size:20;not null;default:'PENDING_REVIEW';index" json:"status"`

	// Applicant profile snapshot, frozen at submission time
	NIK           string  `gorm:"size:20;not null" json:"nik"`
	BirthPlace    string  `gorm:"size:100" json:"birth_place"`
	BirthDate     string  `gorm:"size:10" json:"birth_date"`
	MaritalStatus string  `gorm:"size:20" json:"marital_status,omitempty"`
	Occupation    string  `gorm:"size:100" json:"occupation"`
	MonthlyIncome float64 `gorm:"type:decimal(15,2)" json:"monthly_income"`
	Phone         string  `gorm:"size:20" json:"phone"`
	NPWP          string  `gorm:"size:25" json:"npwp,omitempty"`
	BankName      string  `gorm:"size:50" json:"bank_name,omitempty"`
	AccountNumber string  `gorm:"size:30" json:"account_number,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`

	// Set once approved; UsedAmount grows with disbursements
	ApprovedLimit *float64 `gorm:"type:decimal(15,2)" json:"approved_limit,omitempty"`
	UsedAmount    float64  `gorm:"type:decimal(15,2);default:0" json:"used_amount"`

	// Audit trail
	RegisteredAt  time.Time  `gorm:"autoCreateTime" json:"registered_at"`
	ReviewedBy    *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote    string     `gorm:"type:text" json:"review_note,omitempty"`
	ApprovedBy    *uint      `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	ApprovalNote  string     `gorm:"type:text" json:"approval_note,omitempty"`
	RejectionNote string     `gorm:"type:text" json:"rejection_note,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User     *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Plafond  *Plafond `gorm:"foreignKey:PlafondID" json:"plafond,omitempty"`
	Reviewer *User    `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	Approver *User    `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (PlafondApplication) TableName() string {
	return "plafond_applications"
}

// AvailableLimit returns the remaining drawable amount. Zero until approved.
func (a *PlafondApplication) AvailableLimit() float64 {
	if a.ApprovedLimit == nil {
		return 0
	}
	return *a.ApprovedLimit - a.UsedAmount
}

// ApplicationResponse DTO, shaped for the portal client
type ApplicationResponse struct {
	ID                 uint                     `json:"id"`
	UserID             uint                     `json:"userId"`
	Username           string                   `json:"username"`
	Status             domain.ApplicationStatus `json:"status"`
	Plafond            PlafondSummary           `json:"plafond"`
	ApprovedLimit      *float64                 `json:"approvedLimit,omitempty"`
	UsedAmount         float64                  `json:"usedAmount"`
	AvailableLimit     float64                  `json:"availableLimit"`
	ApplicantDetail    ApplicantDetail          `json:"applicantDetail"`
	RegisteredAt       time.Time                `json:"registeredAt"`
	ReviewedByUsername string                   `json:"reviewedByUsername,omitempty"`
	ReviewedAt         *time.Time               `json:"reviewedAt,omitempty"`
	ReviewNote         string                   `json:"reviewNote,omitempty"`
	ApprovedByUsername string                   `json:"approvedByUsername,omitempty"`
	ApprovedAt         *time.Time               `json:"approvedAt,omitempty"`
	RejectionNote      string                   `json:"rejectionNote,omitempty"`
}

// PlafondSummary is the product slice embedded in application responses
type PlafondSummary struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	MaxAmount float64 `json:"maxAmount"`
}

// ApplicantDetail is the applicant snapshot DTO
type ApplicantDetail struct {
	FullName      string   `json:"fullName,omitempty"`
	NIK           string   `json:"nik"`
	BirthPlace    string   `json:"birthPlace"`
	BirthDate     string   `json:"birthDate"`
	MaritalStatus string   `json:"maritalStatus,omitempty"`
	Occupation    string   `json:"occupation"`
	MonthlyIncome float64  `json:"monthlyIncome"`
	Phone         string   `json:"phone"`
	NPWP          string   `json:"npwp,omitempty"`
	BankName      string   `json:"bankName,omitempty"`
	AccountNumber string   `json:"accountNumber,omitempty"`
	Latitude      *float64 `json:"applicationLatitude,omitempty"`
	Longitude     *float64 `json:"applicationLongitude,omitempty"`
}

func (a *PlafondApplication) ToResponse() *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		Status:         a.Status,
		ApprovedLimit:  a.ApprovedLimit,
		UsedAmount:     a.UsedAmount,
		AvailableLimit: a.AvailableLimit(),
		ApplicantDetail: ApplicantDetail{
			NIK:           a.NIK,
			BirthPlace:    a.BirthPlace,
			BirthDate:     a.BirthDate,
			MaritalStatus: a.MaritalStatus,
			Occupation:    a.Occupation,
			MonthlyIncome: a.MonthlyIncome,
			Phone:         a.Phone,
			NPWP:          a.NPWP,
			BankName:      a.BankName,
			AccountNumber: a.AccountNumber,
			Latitude:      a.Latitude,
			Longitude:     a.Longitude,
		},
		RegisteredAt:  a.RegisteredAt,
		ReviewedAt:    a.ReviewedAt,
		ReviewNote:    a.ReviewNote,
		ApprovedAt:    a.ApprovedAt,
		RejectionNote: a.RejectionNote,
	}

	if a.User != nil {
		resp.Username = a.User.Username
		resp.ApplicantDetail.FullName = a.User.FullName
	}
	if a.Plafond != nil {
		resp.Plafond = PlafondSummary{
			ID:        a.Plafond.ID,
			Name:      a.Plafond.Name,
			MaxAmount: a.Plafond.MaxAmount,
		}
	}
	if a.Reviewer != nil {
		resp.ReviewedByUsername = a.Reviewer.Username
	}
	if a.Approver != nil {
		resp.ApprovedByUsername = a.Approver.Username
	}

	return resp
}

// Disbursement represents a fund-release request against an approved application
type Disbursement struct {
	ID            uint                      `gorm:"primaryKey" json:"id"`
	ApplicationID uint                      `gorm:"not null;index" json:"application_id"`
	Amount        float64                   `gorm:"type:decimal(15,2);not null" json:"amount"`
	TenorMonths   int                       `gorm:"not null" json:"tenor_months"`
	InterestRate  float64                   `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	InterestAmount float64                  `gorm:"type:decimal(15,2);not null" json:"interest_amount"`
	TotalAmount   float64                   `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Status        domain.DisbursementStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`

	RequestedAt        time.Time  `gorm:"autoCreateTime" json:"requested_at"`
	DisbursedBy        *uint      `json:"disbursed_by,omitempty"`
	DisbursedAt        *time.Time `json:"disbursed_at,omitempty"`
	Note               string     `gorm:"type:text" json:"note,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Application *PlafondApplication `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Processor   *User               `gorm:"foreignKey:DisbursedBy" json:"processor,omitempty"`
}

func (Disbursement) TableName() string {
	return "disbursements"
}

// DisbursementResponse DTO, shaped for the portal client
type DisbursementResponse struct {
	ID                  uint                      `json:"id"`
	UserPlafondID       uint                      `json:"userPlafondId"`
	CustomerName        string                    `json:"customerName,omitempty"`
	CustomerUsername    string                    `json:"customerUsername,omitempty"`
	PlafondName         string                    `json:"plafondName,omitempty"`
	Amount              float64                   `json:"amount"`
	InterestRate        float64                   `json:"interestRate"`
	TenorMonth          int                       `json:"tenorMonth"`
	InterestAmount      float64                   `json:"interestAmount"`
	TotalAmount         float64                   `json:"totalAmount"`
	Status              domain.DisbursementStatus `json:"status"`
	RequestedAt         time.Time                 `json:"requestedAt"`
	DisbursedAt         *time.Time                `json:"disbursedAt,omitempty"`
	DisbursedByUsername string                    `json:"disbursedByUsername,omitempty"`
	Note                string                    `json:"note,omitempty"`
	CancellationReason  string                    `json:"cancellationReason,omitempty"`
	RemainingLimit      float64                   `json:"remainingLimit"`
	BankName            string                    `json:"bankName,omitempty"`
	AccountNumber       string                    `json:"accountNumber,omitempty"`
}

func (d *Disbursement) ToResponse() *DisbursementResponse {
	resp := &DisbursementResponse{
		ID:                 d.ID,
		UserPlafondID:      d.ApplicationID,
		Amount:             d.Amount,
		InterestRate:       d.InterestRate,
		TenorMonth:         d.TenorMonths,
		InterestAmount:     d.InterestAmount,
		TotalAmount:        d.TotalAmount,
		Status:             d.Status,
		RequestedAt:        d.RequestedAt,
		DisbursedAt:        d.DisbursedAt,
		Note:               d.Note,
		CancellationReason: d.CancellationReason,
	}

	if d.Application != nil {
		resp.RemainingLimit = d.Application.AvailableLimit()
		resp.BankName = d.Application.BankName
		resp.AccountNumber = d.Application.AccountNumber
		if d.Application.User != nil {
			resp.CustomerName = d.Application.User.FullName
			resp.CustomerUsername = d.Application.User.Username
		}
		if d.Application.Plafond != nil {
			resp.PlafondName = d.Application.Plafond.Name
		}
	}
	if d.Processor != nil {
		resp.DisbursedByUsername = d.Processor.Username
	}

	return resp
}

// ============================================================
// History Table
// ============================================================

// History entity types
const (
	HistoryEntityApplication  = "PLAFOND_APPLICATION"
	HistoryEntityDisbursement = "DISBURSEMENT"
)

// PlafondHistory is the append-only log row produced by every status
// transition. Rows are never updated or deleted.
type PlafondHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EntityType    string    `gorm:"size:30;not null;index" json:"entity_type"`
	EntityID      uint      `gorm:"not null;index" json:"entity_id"`
	NewStatus     string    `gorm:"size:20;not null" json:"newStatus"`
	ActorID       uint      `gorm:"not null" json:"actor_id"`
	ActorUsername string    `gorm:"size:50;not null" json:"actorUsername"`
	ActorRole     string    `gorm:"size:30;not null" json:"actorRole"`
	Note          string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PlafondHistory) TableName() string {
	return "plafond_histories"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&Role{},
		&User{},
		&PasswordResetToken{},
		// Master
		&Plafond{},
		&TenorRate{},
		// Main
		&PlafondApplication{},
		&Disbursement{},
		// History
		&PlafondHistory{},
	)
}
