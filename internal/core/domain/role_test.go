package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoleSetDropsUnknown(t *testing.T) {
	set := ParseRoleSet([]string{"MARKETING", "AUDITOR", "BACK_OFFICE"})
	assert.Equal(t, RoleSet{RoleMarketing, RoleBackOffice}, set)
}

func TestRoleSetIntersects(t *testing.T) {
	staff := RoleSet{RoleMarketing, RoleBranchManager}

	assert.True(t, staff.Intersects(RoleSet{RoleMarketing}))
	assert.True(t, staff.Intersects(RoleSet{RoleBackOffice, RoleBranchManager}))
	assert.False(t, staff.Intersects(RoleSet{RoleCustomer}))
	assert.False(t, staff.Intersects(nil))
	assert.False(t, RoleSet(nil).Intersects(staff))
}

func TestRedirectForFollowsPriorityOrder(t *testing.T) {
	assert.Equal(t, RedirectReview, RedirectFor(RoleSet{RoleMarketing}))
	assert.Equal(t, RedirectApproval, RedirectFor(RoleSet{RoleBranchManager}))
	assert.Equal(t, RedirectDisbursement, RedirectFor(RoleSet{RoleBackOffice}))

	// Multi-role actors land on the highest-priority page
	assert.Equal(t, RedirectReview,
		RedirectFor(RoleSet{RoleBackOffice, RoleMarketing}))
	assert.Equal(t, RedirectApproval,
		RedirectFor(RoleSet{RoleBackOffice, RoleBranchManager}))

	// No queue role falls back to history
	assert.Equal(t, RedirectHistory, RedirectFor(RoleSet{RoleSuperAdmin}))
	assert.Equal(t, RedirectHistory, RedirectFor(RoleSet{RoleCustomer}))
	assert.Equal(t, RedirectHistory, RedirectFor(nil))
}
