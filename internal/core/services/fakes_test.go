package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the guarded-update semantics of the
// real gorm implementations so race behavior is testable without a database.

type fakeApplicationRepo struct {
	mu       sync.Mutex
	nextID   uint
	apps     map[uint]*models.PlafondApplication
	plafonds *fakePlafondRepo
}

func newFakeApplicationRepo(plafonds *fakePlafondRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{nextID: 1, apps: make(map[uint]*models.PlafondApplication), plafonds: plafonds}
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *models.PlafondApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.ID = r.nextID
	r.nextID++
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id uint) (*models.PlafondApplication, error) {
	r.mu.Lock()
	app, ok := r.apps[id]
	if !ok {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *app
	r.mu.Unlock()

	// The real repository preloads the plafond relation
	if r.plafonds != nil {
		if p, err := r.plafonds.GetByID(ctx, cp.PlafondID); err == nil {
			cp.Plafond = p
		}
	}
	return &cp, nil
}

func (r *fakeApplicationRepo) List(_ context.Context) ([]*models.PlafondApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(*models.PlafondApplication) bool { return true }), nil
}

func (r *fakeApplicationRepo) ListByStatus(_ context.Context, status domain.ApplicationStatus) ([]*models.PlafondApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(a *models.PlafondApplication) bool { return a.Status == status }), nil
}

func (r *fakeApplicationRepo) ListByUser(_ context.Context, userID uint) ([]*models.PlafondApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(a *models.PlafondApplication) bool { return a.UserID == userID }), nil
}

func (r *fakeApplicationRepo) HasOpenApplication(_ context.Context, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.UserID == userID && !a.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) TransitionStatus(_ context.Context, id uint, from, to domain.ApplicationStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	if v, ok := updates["approved_limit"].(float64); ok {
		app.ApprovedLimit = &v
	}
	if v, ok := updates["review_note"].(string); ok {
		app.ReviewNote = v
	}
	if v, ok := updates["approval_note"].(string); ok {
		app.ApprovalNote = v
	}
	if v, ok := updates["rejection_note"].(string); ok {
		app.RejectionNote = v
	}
	return true, nil
}

func (r *fakeApplicationRepo) ReserveLimit(_ context.Context, id uint, amount float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if app.ApprovedLimit == nil || *app.ApprovedLimit-app.UsedAmount < amount {
		return false, nil
	}
	app.UsedAmount += amount
	return true, nil
}

func (r *fakeApplicationRepo) ReleaseLimit(_ context.Context, id uint, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	app.UsedAmount -= amount
	if app.UsedAmount < 0 {
		app.UsedAmount = 0
	}
	return nil
}

func (r *fakeApplicationRepo) snapshot(keep func(*models.PlafondApplication) bool) []*models.PlafondApplication {
	out := make([]*models.PlafondApplication, 0, len(r.apps))
	for _, a := range r.apps {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakePlafondRepo struct {
	mu       sync.Mutex
	nextID   uint
	plafonds map[uint]*models.Plafond
}

func newFakePlafondRepo() *fakePlafondRepo {
	return &fakePlafondRepo{nextID: 1, plafonds: make(map[uint]*models.Plafond)}
}

func (r *fakePlafondRepo) Create(_ context.Context, p *models.Plafond) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.plafonds[p.ID] = &cp
	return nil
}

func (r *fakePlafondRepo) GetByID(_ context.Context, id uint) (*models.Plafond, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plafonds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlafondRepo) Update(_ context.Context, p *models.Plafond) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plafonds[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.plafonds[p.ID] = &cp
	return nil
}

func (r *fakePlafondRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plafonds, id)
	return nil
}

func (r *fakePlafondRepo) List(_ context.Context) ([]*models.Plafond, error) {
	return r.listWhere(func(*models.Plafond) bool { return true }), nil
}

func (r *fakePlafondRepo) ListActive(_ context.Context) ([]*models.Plafond, error) {
	return r.listWhere(func(p *models.Plafond) bool { return p.IsActive }), nil
}

func (r *fakePlafondRepo) listWhere(keep func(*models.Plafond) bool) []*models.Plafond {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Plafond, 0, len(r.plafonds))
	for _, p := range r.plafonds {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeTenorRateRepo struct {
	mu     sync.Mutex
	nextID uint
	rates  map[uint]*models.TenorRate
}

func newFakeTenorRateRepo() *fakeTenorRateRepo {
	return &fakeTenorRateRepo{nextID: 1, rates: make(map[uint]*models.TenorRate)}
}

func (r *fakeTenorRateRepo) Create(_ context.Context, rate *models.TenorRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate.ID = r.nextID
	r.nextID++
	cp := *rate
	r.rates[rate.ID] = &cp
	return nil
}

func (r *fakeTenorRateRepo) GetByID(_ context.Context, id uint) (*models.TenorRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.rates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rate
	return &cp, nil
}

func (r *fakeTenorRateRepo) Update(_ context.Context, rate *models.TenorRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rates[rate.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *rate
	r.rates[rate.ID] = &cp
	return nil
}

func (r *fakeTenorRateRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rates, id)
	return nil
}

func (r *fakeTenorRateRepo) List(_ context.Context) ([]*models.TenorRate, error) {
	return r.listWhere(func(*models.TenorRate) bool { return true }), nil
}

func (r *fakeTenorRateRepo) ListByPlafond(_ context.Context, plafondID uint) ([]*models.TenorRate, error) {
	return r.listWhere(func(t *models.TenorRate) bool { return t.PlafondID == plafondID }), nil
}

func (r *fakeTenorRateRepo) GetActiveRate(_ context.Context, plafondID uint, tenorMonths int) (*models.TenorRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rates {
		if t.PlafondID == plafondID && t.TenorMonths == tenorMonths && t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTenorRateRepo) listWhere(keep func(*models.TenorRate) bool) []*models.TenorRate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TenorRate, 0, len(r.rates))
	for _, t := range r.rates {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeDisbursementRepo struct {
	mu     sync.Mutex
	nextID uint
	disbs  map[uint]*models.Disbursement
	apps   *fakeApplicationRepo
}

func newFakeDisbursementRepo(apps *fakeApplicationRepo) *fakeDisbursementRepo {
	return &fakeDisbursementRepo{nextID: 1, disbs: make(map[uint]*models.Disbursement), apps: apps}
}

func (r *fakeDisbursementRepo) Create(_ context.Context, d *models.Disbursement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = r.nextID
	r.nextID++
	cp := *d
	r.disbs[d.ID] = &cp
	return nil
}

func (r *fakeDisbursementRepo) GetByID(ctx context.Context, id uint) (*models.Disbursement, error) {
	r.mu.Lock()
	d, ok := r.disbs[id]
	if !ok {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	r.mu.Unlock()

	// The real repository preloads the application relation
	if r.apps != nil {
		if app, err := r.apps.GetByID(ctx, cp.ApplicationID); err == nil {
			cp.Application = app
		}
	}
	return &cp, nil
}

func (r *fakeDisbursementRepo) List(_ context.Context) ([]*models.Disbursement, error) {
	return r.listWhere(func(*models.Disbursement) bool { return true }), nil
}

func (r *fakeDisbursementRepo) ListByStatus(_ context.Context, status domain.DisbursementStatus) ([]*models.Disbursement, error) {
	return r.listWhere(func(d *models.Disbursement) bool { return d.Status == status }), nil
}

func (r *fakeDisbursementRepo) ListByUser(ctx context.Context, userID uint) ([]*models.Disbursement, error) {
	all := r.listWhere(func(*models.Disbursement) bool { return true })
	out := make([]*models.Disbursement, 0, len(all))
	for _, d := range all {
		app, err := r.apps.GetByID(ctx, d.ApplicationID)
		if err != nil {
			continue
		}
		if app.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDisbursementRepo) TransitionStatus(_ context.Context, id uint, from, to domain.DisbursementStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disbs[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	if v, ok := updates["note"].(string); ok {
		d.Note = v
	}
	if v, ok := updates["cancellation_reason"].(string); ok {
		d.CancellationReason = v
	}
	return true, nil
}

func (r *fakeDisbursementRepo) listWhere(keep func(*models.Disbursement) bool) []*models.Disbursement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Disbursement, 0, len(r.disbs))
	for _, d := range r.disbs {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*models.PlafondHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Append(_ context.Context, entry *models.PlafondHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	cp.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeHistoryRepo) List(_ context.Context, limit int) ([]*models.PlafondHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.PlafondHistory, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListByEntity(_ context.Context, entityType string, entityID uint) ([]*models.PlafondHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.PlafondHistory, 0)
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, usernameOrEmail string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == usernameOrEmail || u.Email == usernameOrEmail {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) SetRoles(_ context.Context, u *models.User, roles []models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Roles = roles
	return nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeRoleRepo struct {
	roles map[string]*models.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	r := &fakeRoleRepo{roles: make(map[string]*models.Role)}
	for i, role := range domain.AllRoles {
		r.roles[string(role)] = &models.Role{ID: uint(i + 1), Name: string(role)}
	}
	return r
}

func (r *fakeRoleRepo) List(_ context.Context) ([]*models.Role, error) {
	out := make([]*models.Role, 0, len(r.roles))
	for _, role := range r.roles {
		cp := *role
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *fakeRoleRepo) GetByIDs(_ context.Context, ids []uint) ([]models.Role, error) {
	out := make([]models.Role, 0, len(ids))
	for _, id := range ids {
		for _, role := range r.roles {
			if role.ID == id {
				out = append(out, *role)
			}
		}
	}
	return out, nil
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*models.PasswordResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{nextID: 1, tokens: make(map[uint]*models.PasswordResetToken)}
}

func (r *fakeResetTokenRepo) Create(_ context.Context, t *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r *fakeResetTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResetTokenRepo) MarkUsed(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	return nil
}

func (r *fakeResetTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, id)
			count++
		}
	}
	return count, nil
}
