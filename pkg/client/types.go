package client

import (
	"encoding/json"
	"time"

	"plafondhub/internal/core/domain"
)

// Envelope is the backend's uniform response wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Identity is the authenticated user as stored alongside the token
type Identity struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name,omitempty"`
	Roles    []string `json:"roles"`
}

// RoleSet parses the identity's role names
func (i *Identity) RoleSet() domain.RoleSet {
	return domain.ParseRoleSet(i.Roles)
}

// LoginResult is the payload of a successful login
type LoginResult struct {
	User        Identity `json:"user"`
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int      `json:"expiresIn"`
	Redirect    string   `json:"redirect"`
}

// Plafond is a catalog entry
type Plafond struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MaxAmount   float64 `json:"max_amount"`
	IsActive    bool    `json:"is_active"`
}

// PlafondSummary is the product slice embedded in applications
type PlafondSummary struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	MaxAmount float64 `json:"maxAmount"`
}

// Application mirrors the backend's application DTO
type Application struct {
	ID             uint           `json:"id"`
	UserID         uint           `json:"userId"`
	Username       string         `json:"username"`
	Status         string         `json:"status"`
	Plafond        PlafondSummary `json:"plafond"`
	ApprovedLimit  *float64       `json:"approvedLimit,omitempty"`
	UsedAmount     float64        `json:"usedAmount"`
	AvailableLimit float64        `json:"availableLimit"`
	RegisteredAt   time.Time      `json:"registeredAt"`
	ReviewNote     string         `json:"reviewNote,omitempty"`
	RejectionNote  string         `json:"rejectionNote,omitempty"`
}

// Disbursement mirrors the backend's disbursement DTO
type Disbursement struct {
	ID                 uint       `json:"id"`
	UserPlafondID      uint       `json:"userPlafondId"`
	CustomerName       string     `json:"customerName,omitempty"`
	PlafondName        string     `json:"plafondName,omitempty"`
	Amount             float64    `json:"amount"`
	InterestRate       float64    `json:"interestRate"`
	TenorMonth         int        `json:"tenorMonth"`
	InterestAmount     float64    `json:"interestAmount"`
	TotalAmount        float64    `json:"totalAmount"`
	Status             string     `json:"status"`
	RequestedAt        time.Time  `json:"requestedAt"`
	DisbursedAt        *time.Time `json:"disbursedAt,omitempty"`
	Note               string     `json:"note,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	RemainingLimit     float64    `json:"remainingLimit"`
}

// HistoryEntry mirrors a transition log row
type HistoryEntry struct {
	ID            uint      `json:"id"`
	EntityType    string    `json:"entity_type"`
	EntityID      uint      `json:"entity_id"`
	NewStatus     string    `json:"newStatus"`
	ActorUsername string    `json:"actorUsername"`
	ActorRole     string    `json:"actorRole"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ApplyRequest is the customer application submission payload
type ApplyRequest struct {
	PlafondID     uint    `json:"plafondId"`
	NIK           string  `json:"nik"`
	BirthPlace    string  `json:"birthPlace"`
	BirthDate     string  `json:"birthDate"`
	MaritalStatus string  `json:"maritalStatus,omitempty"`
	Occupation    string  `json:"occupation"`
	MonthlyIncome float64 `json:"monthlyIncome"`
	Phone         string  `json:"phone"`
	NPWP          string  `json:"npwp,omitempty"`
	BankName      string  `json:"bankName,omitempty"`
	AccountNumber string  `json:"accountNumber,omitempty"`
}

// DisbursementRequest is the fund-release request payload
type DisbursementRequest struct {
	UserPlafondID uint    `json:"userPlafondId"`
	Amount        float64 `json:"amount"`
	TenorMonth    int     `json:"tenorMonth"`
	Note          string  `json:"note,omitempty"`
}
