package services

import (
	"context"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"
	"plafondhub/internal/core/domain"
)

// Flat fallback used only for the revenue estimate when no rate row matches.
// Actual disbursement pricing always resolves against the tenor rate table.
const fallbackEstimateRate = 12.0

// DashboardService aggregates counts and totals for the admin dashboard
type DashboardService struct {
	appRepo  repositories.ApplicationRepository
	disbRepo repositories.DisbursementRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	appRepo repositories.ApplicationRepository,
	disbRepo repositories.DisbursementRepository,
) *DashboardService {
	return &DashboardService{
		appRepo:  appRepo,
		disbRepo: disbRepo,
	}
}

// DashboardSummary is the admin dashboard payload
type DashboardSummary struct {
	Applications  ApplicationCounts  `json:"applications"`
	Disbursements DisbursementCounts `json:"disbursements"`

	TotalApprovedLimit  float64 `json:"totalApprovedLimit"`
	TotalDisbursed      float64 `json:"totalDisbursed"`
	TotalPendingAmount  float64 `json:"totalPendingAmount"`
	ExpectedInterest    float64 `json:"expectedInterest"`
	InterestIsEstimate  bool    `json:"interestIsEstimate"`
}

// ApplicationCounts holds per-status application totals
type ApplicationCounts struct {
	PendingReview   int `json:"pendingReview"`
	WaitingApproval int `json:"waitingApproval"`
	Approved        int `json:"approved"`
	Rejected        int `json:"rejected"`
}

// DisbursementCounts holds per-status disbursement totals
type DisbursementCounts struct {
	Pending   int `json:"pending"`
	Disbursed int `json:"disbursed"`
	Cancelled int `json:"cancelled"`
}

// Summary builds the dashboard aggregate from live data
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	apps, err := s.appRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	disbs, err := s.disbRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{}

	for _, a := range apps {
		switch a.Status {
		case domain.StatusPendingReview:
			summary.Applications.PendingReview++
		case domain.StatusWaitingApproval:
			summary.Applications.WaitingApproval++
		case domain.StatusApproved:
			summary.Applications.Approved++
			if a.ApprovedLimit != nil {
				summary.TotalApprovedLimit += *a.ApprovedLimit
			}
		case domain.StatusRejected:
			summary.Applications.Rejected++
		}
	}

	for _, d := range disbs {
		switch d.Status {
		case domain.DisbursementPending:
			summary.Disbursements.Pending++
			summary.TotalPendingAmount += d.Amount
		case domain.DisbursementDisbursed:
			summary.Disbursements.Disbursed++
			summary.TotalDisbursed += d.Amount
			interest, estimated := interestFor(d)
			summary.ExpectedInterest += interest
			if estimated {
				summary.InterestIsEstimate = true
			}
		case domain.DisbursementCancelled:
			summary.Disbursements.Cancelled++
		}
	}

	return summary, nil
}

// interestFor reads the stored interest when present, estimating with the flat
// fallback rate only for legacy rows priced before the rate table existed.
func interestFor(d *models.Disbursement) (float64, bool) {
	if d.InterestAmount > 0 {
		return d.InterestAmount, false
	}
	return d.Amount * (fallbackEstimateRate / 100) * (float64(d.TenorMonths) / 12), true
}
