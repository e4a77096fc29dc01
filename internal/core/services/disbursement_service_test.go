package services

import (
	"context"
	"testing"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disbursementFixture struct {
	svc      *DisbursementService
	appRepo  *fakeApplicationRepo
	rateRepo *fakeTenorRateRepo
	history  *fakeHistoryRepo
	app      *models.PlafondApplication
}

var backOfficeActor = Actor{ID: 4, Username: "sari.backoffice", Role: domain.RoleBackOffice}

// newDisbursementFixture wires a fixture around an approved application with
// a 20M limit and a configured 12-month rate of 12.5%.
func newDisbursementFixture(t *testing.T) *disbursementFixture {
	t.Helper()
	ctx := context.Background()

	plafondRepo := newFakePlafondRepo()
	appRepo := newFakeApplicationRepo(plafondRepo)
	rateRepo := newFakeTenorRateRepo()
	historyRepo := newFakeHistoryRepo()
	disbRepo := newFakeDisbursementRepo(appRepo)

	p := &models.Plafond{Name: "Gold", MaxAmount: 25_000_000, IsActive: true}
	require.NoError(t, plafondRepo.Create(ctx, p))
	require.NoError(t, rateRepo.Create(ctx, &models.TenorRate{
		PlafondID: p.ID, TenorMonths: 12, InterestRate: 12.5, IsActive: true,
	}))

	limit := 20_000_000.0
	app := &models.PlafondApplication{
		UserID:        10,
		PlafondID:     p.ID,
		Status:        domain.StatusApproved,
		ApprovedLimit: &limit,
	}
	require.NoError(t, appRepo.Create(ctx, app))

	svc := NewDisbursementService(disbRepo, appRepo, rateRepo, historyRepo, nil, nil)
	return &disbursementFixture{svc: svc, appRepo: appRepo, rateRepo: rateRepo, history: historyRepo, app: app}
}

func TestCreateDisbursementReservesLimit(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 5_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DisbursementPending, resp.Status)
	assert.Equal(t, 12.5, resp.InterestRate)
	// 5M * 12.5% * 12/12
	assert.InDelta(t, 625_000, resp.InterestAmount, 0.01)
	assert.InDelta(t, 5_625_000, resp.TotalAmount, 0.01)
	assert.InDelta(t, 15_000_000, resp.RemainingLimit, 0.01)
}

func TestCreateDisbursementProRatesShortTenor(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rateRepo.Create(ctx, &models.TenorRate{
		PlafondID: f.app.PlafondID, TenorMonths: 6, InterestRate: 11.0, IsActive: true,
	}))

	resp, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 4_000_000, TenorMonths: 6,
	})
	require.NoError(t, err)

	// 4M * 11% * 6/12
	assert.InDelta(t, 220_000, resp.InterestAmount, 0.01)
	assert.InDelta(t, 4_220_000, resp.TotalAmount, 0.01)
}

func TestCreateDisbursementRejectsOversizedAmount(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 25_000_000, TenorMonths: 12,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientLimit)

	// Nothing was reserved
	app, err := f.appRepo.GetByID(ctx, f.app.ID)
	require.NoError(t, err)
	assert.Zero(t, app.UsedAmount)
}

func TestCreateDisbursementUnconfiguredTenor(t *testing.T) {
	f := newDisbursementFixture(t)

	_, err := f.svc.Create(context.Background(), 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 1_000_000, TenorMonths: 24,
	})
	assert.ErrorIs(t, err, domain.ErrRateNotConfigured)
}

func TestCreateDisbursementOwnershipCheck(t *testing.T) {
	f := newDisbursementFixture(t)

	_, err := f.svc.Create(context.Background(), 99, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 1_000_000, TenorMonths: 12,
	})
	assert.ErrorIs(t, err, ErrNotApplicationOwner)
}

func TestCreateDisbursementRequiresApprovedApplication(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	pending := &models.PlafondApplication{
		UserID: 10, PlafondID: f.app.PlafondID, Status: domain.StatusPendingReview,
	}
	require.NoError(t, f.appRepo.Create(ctx, pending))

	_, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: pending.ID, Amount: 1_000_000, TenorMonths: 12,
	})
	assert.ErrorIs(t, err, ErrApplicationNotApproved)
}

func TestSequentialDisbursementsExhaustLimit(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 12_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 8_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)

	// Limit fully used; even the smallest request fails now
	_, err = f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 1, TenorMonths: 12,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientLimit)
}

func TestProcessDisbursement(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 5_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)

	resp, err := f.svc.Process(ctx, created.ID, backOfficeActor, &ProcessInput{Note: "transferred"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisbursementDisbursed, resp.Status)
	assert.Equal(t, "transferred", resp.Note)

	trail, err := f.history.ListByEntity(ctx, models.HistoryEntityDisbursement, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, string(domain.DisbursementDisbursed), trail[0].NewStatus)
}

func TestProcessTwiceReturnsStaleState(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 5_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, created.ID, backOfficeActor, &ProcessInput{})
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, created.ID, backOfficeActor, &ProcessInput{})
	assert.ErrorIs(t, err, domain.ErrStaleState)
}

func TestCancelReleasesLimit(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 5_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)
	assert.InDelta(t, 15_000_000, created.RemainingLimit, 0.01)

	resp, err := f.svc.Cancel(ctx, created.ID, backOfficeActor, &CancelInput{Reason: "account mismatch"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisbursementCancelled, resp.Status)
	assert.Equal(t, "account mismatch", resp.CancellationReason)
	assert.InDelta(t, 20_000_000, resp.RemainingLimit, 0.01)
}

func TestCancelRequiresReason(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 5_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, created.ID, backOfficeActor, &CancelInput{})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	// Still pending, limit still reserved
	resp, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DisbursementPending, resp.Status)
	assert.InDelta(t, 15_000_000, resp.RemainingLimit, 0.01)
}

func TestCancelAfterProcessFails(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 10, &CreateDisbursementInput{
		ApplicationID: f.app.ID, Amount: 5_000_000, TenorMonths: 12,
	})
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, created.ID, backOfficeActor, &ProcessInput{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, created.ID, backOfficeActor, &CancelInput{Reason: "too late"})
	assert.ErrorIs(t, err, domain.ErrStaleState)
}
