package enums

import "slices"

// ProfileRole is the role stored on a customer or staff profile.
type ProfileRole string

const (
	ProfileRoleCustomer   ProfileRole = "customer"
	ProfileRoleAdmin      ProfileRole = "admin"
	ProfileRoleSuperAdmin ProfileRole = "super_admin"
)

var validProfileRoles = []ProfileRole{
	ProfileRoleCustomer,
	ProfileRoleAdmin,
	ProfileRoleSuperAdmin,
}

func (p ProfileRole) String() string {
	return string(p)
}

func (p ProfileRole) IsValid() bool {
	return slices.Contains(validProfileRoles, p)
}

func ParseProfileRole(value string) (ProfileRole, error) {
	return parseEnum("profile role", validProfileRoles, value)
}

// IsStaff reports whether the role may use the admin console.
func (p ProfileRole) IsStaff() bool {
	return p == ProfileRoleAdmin || p == ProfileRoleSuperAdmin
}
