package services

import (
	"context"
	"testing"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicationFixture(t *testing.T) (*ApplicationService, *fakeApplicationRepo, *fakePlafondRepo, *fakeHistoryRepo) {
	t.Helper()
	plafondRepo := newFakePlafondRepo()
	appRepo := newFakeApplicationRepo(plafondRepo)
	historyRepo := newFakeHistoryRepo()
	svc := NewApplicationService(appRepo, plafondRepo, historyRepo, nil, nil)
	return svc, appRepo, plafondRepo, historyRepo
}

func seedGoldPlafond(t *testing.T, repo *fakePlafondRepo) *models.Plafond {
	t.Helper()
	p := &models.Plafond{Name: "Gold", MaxAmount: 25_000_000, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func validApply(plafondID uint) *ApplyInput {
	return &ApplyInput{
		PlafondID:     plafondID,
		NIK:           "3173082905900001",
		BirthPlace:    "Jakarta",
		BirthDate:     "1990-05-29",
		Occupation:    "Engineer",
		MonthlyIncome: 15_000_000,
		Phone:         "081234567890",
	}
}

var (
	marketingActor = Actor{ID: 2, Username: "rina.marketing", Role: domain.RoleMarketing}
	managerActor   = Actor{ID: 3, Username: "budi.manager", Role: domain.RoleBranchManager}
)

func TestApplyCreatesPendingReview(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)

	resp, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingReview, resp.Status)
	assert.Equal(t, uint(10), resp.UserID)
	assert.Nil(t, resp.ApprovedLimit)
	assert.Zero(t, resp.AvailableLimit)
}

func TestApplyRejectsInactivePlafond(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := &models.Plafond{Name: "Retired", MaxAmount: 1_000_000, IsActive: false}
	require.NoError(t, plafondRepo.Create(context.Background(), p))

	_, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	assert.ErrorIs(t, err, ErrPlafondInactive)
}

func TestApplyRejectsSecondOpenApplication(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)

	_, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), 10, validApply(p.ID))
	assert.ErrorIs(t, err, ErrOpenApplication)
}

func TestReviewMovesToWaitingApproval(t *testing.T) {
	svc, _, plafondRepo, historyRepo := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	resp, err := svc.Review(context.Background(), created.ID, marketingActor, &ReviewInput{Note: "documents complete"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingApproval, resp.Status)

	trail, err := historyRepo.ListByEntity(context.Background(), models.HistoryEntityApplication, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, string(domain.StatusWaitingApproval), trail[0].NewStatus)
	assert.Equal(t, "rina.marketing", trail[0].ActorUsername)
}

func TestReviewTwiceReturnsStaleState(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), created.ID, marketingActor, &ReviewInput{})
	require.NoError(t, err)

	// Second reviewer loses the race; state is untouched
	_, err = svc.Review(context.Background(), created.ID, marketingActor, &ReviewInput{})
	assert.ErrorIs(t, err, domain.ErrStaleState)

	resp, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingApproval, resp.Status)
}

func TestApproveSetsLimit(t *testing.T) {
	svc, appRepo, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), created.ID, marketingActor, &ReviewInput{})
	require.NoError(t, err)

	resp, err := svc.Approve(context.Background(), created.ID, managerActor, &ApproveInput{ApprovedLimit: 20_000_000})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, resp.Status)
	require.NotNil(t, resp.ApprovedLimit)
	assert.Equal(t, 20_000_000.0, *resp.ApprovedLimit)
	assert.Equal(t, 20_000_000.0, resp.AvailableLimit)

	stored, err := appRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.UsedAmount)
}

func TestApproveRejectsLimitAbovePlafondMax(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), created.ID, marketingActor, &ReviewInput{})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, managerActor, &ApproveInput{ApprovedLimit: 30_000_000})
	assert.ErrorIs(t, err, domain.ErrLimitOutOfRange)

	_, err = svc.Approve(context.Background(), created.ID, managerActor, &ApproveInput{ApprovedLimit: 0})
	assert.ErrorIs(t, err, domain.ErrLimitOutOfRange)

	// Still approvable after invalid attempts
	resp, err := svc.Approve(context.Background(), created.ID, managerActor, &ApproveInput{ApprovedLimit: 25_000_000})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, resp.Status)
}

func TestApproveSkippingReviewFails(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	// PENDING_REVIEW cannot jump straight to APPROVED
	_, err = svc.Approve(context.Background(), created.ID, managerActor, &ApproveInput{ApprovedLimit: 1_000_000})
	assert.ErrorIs(t, err, domain.ErrStaleState)
}

func TestRejectNoteIsOptional(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	// An empty note still rejects; only disbursement cancels demand a reason
	resp, err := svc.RejectReview(context.Background(), created.ID, marketingActor, &RejectInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, resp.Status)
	assert.Empty(t, resp.RejectionNote)
}

func TestRejectCarriesNote(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)

	resp, err := svc.RejectReview(context.Background(), created.ID, marketingActor, &RejectInput{Note: "income unverifiable"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, resp.Status)
	assert.Equal(t, "income unverifiable", resp.RejectionNote)
}

func TestRejectedIsTerminal(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)
	created, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)
	_, err = svc.RejectReview(context.Background(), created.ID, marketingActor, &RejectInput{Note: "no"})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), created.ID, marketingActor, &ReviewInput{})
	assert.ErrorIs(t, err, domain.ErrStaleState)
}

func TestTransitionUnknownApplication(t *testing.T) {
	svc, _, _, _ := newApplicationFixture(t)

	_, err := svc.Review(context.Background(), 999, marketingActor, &ReviewInput{})
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestListByStatusFilters(t *testing.T) {
	svc, _, plafondRepo, _ := newApplicationFixture(t)
	p := seedGoldPlafond(t, plafondRepo)

	first, err := svc.Apply(context.Background(), 10, validApply(p.ID))
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), 11, validApply(p.ID))
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), first.ID, marketingActor, &ReviewInput{})
	require.NoError(t, err)

	pending, err := svc.ListByStatus(context.Background(), domain.StatusPendingReview)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(11), pending[0].UserID)

	waiting, err := svc.ListByStatus(context.Background(), domain.StatusWaitingApproval)
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, first.ID, waiting[0].ID)
}
