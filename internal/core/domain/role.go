package domain

// Role is the closed set of account kinds known to the ledger.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleOrganisation Role = "organisation"
	RoleHospital     Role = "hospital"
	RoleDonor        Role = "donor"
)

// recordPermissions is the single source of truth for which role may record which direction.
var recordPermissions = map[Role]map[Direction]bool{
	RoleDonor:        {DirectionIn: true},
	RoleOrganisation: {DirectionIn: true},
	RoleHospital:     {DirectionIn: true, DirectionOut: true},
	RoleAdmin:        {DirectionIn: true, DirectionOut: true},
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := recordPermissions[r]
	return ok
}

// CanRecord reports whether an actor with role r may record a transaction in direction d.
func (r Role) CanRecord(d Direction) bool {
	return recordPermissions[r][d]
}

// OwnsBook reports whether accounts of this role can act as an availability scope.
// Donors contribute to books but never hold one.
func (r Role) OwnsBook() bool {
	return r.IsValid() && r != RoleDonor
}

// IsRegistrable reports whether the role can be self-registered through the public API.
func (r Role) IsRegistrable() bool {
	return r == RoleOrganisation || r == RoleHospital || r == RoleDonor
}
