package domain

// Role represents a named authority in the system
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleMarketing     Role = "MARKETING"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleBackOffice    Role = "BACK_OFFICE"
	RoleCustomer      Role = "CUSTOMER"
)

// AllRoles is the closed set of roles known to the platform
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleMarketing,
	RoleBranchManager,
	RoleBackOffice,
	RoleCustomer,
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// RoleSet is an ordered set of roles as carried in a session identity
type RoleSet []Role

// ParseRoleSet converts role name strings (backend-authoritative) into a RoleSet.
// Unknown names are dropped rather than rejected, so an older client keeps
// working when the backend grows a role.
func ParseRoleSet(names []string) RoleSet {
	set := make(RoleSet, 0, len(names))
	for _, name := range names {
		role := Role(name)
		if role.IsValid() {
			set = append(set, role)
		}
	}
	return set
}

// Strings returns the role names
func (s RoleSet) Strings() []string {
	names := make([]string, len(s))
	for i, role := range s {
		names[i] = string(role)
	}
	return names
}

// Contains reports whether the set holds the given role
func (s RoleSet) Contains(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Intersects reports whether the set shares at least one role with other
func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range other {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// redirectTarget pairs a role with the dashboard page relevant to its job.
// Evaluated top-down, so a multi-role actor lands on the highest-priority page.
type redirectTarget struct {
	Role   Role
	Target string
}

// Dashboard redirect targets
const (
	RedirectReview       = "/dashboard/review"
	RedirectApproval     = "/dashboard/approval"
	RedirectDisbursement = "/dashboard/disbursement"
	RedirectHistory      = "/dashboard/history"
)

var redirectPriority = []redirectTarget{
	{RoleMarketing, RedirectReview},
	{RoleBranchManager, RedirectApproval},
	{RoleBackOffice, RedirectDisbursement},
}

// RedirectFor resolves the page a denied actor should be routed to, based on
// the actor's own roles. Falls back to the history view, which every
// authenticated role may see.
func RedirectFor(roles RoleSet) string {
	for _, entry := range redirectPriority {
		if roles.Contains(entry.Role) {
			return entry.Target
		}
	}
	return RedirectHistory
}
