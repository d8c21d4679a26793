package rbac

import "strings"

// Role is a normalized role name. Use [Normalize] to produce one from raw
// backend input; constructing a Role from an unlisted string is allowed and
// simply resolves to no access anywhere.
type Role string

const (
	// RoleAdmin is the platform-level administrator.
	RoleAdmin Role = "admin"
	// RoleOwner is the agency owner.
	RoleOwner Role = "owner"
	// RoleManager runs day-to-day agency operations.
	RoleManager Role = "manager"
	// RoleStaff is a general agency team member.
	RoleStaff Role = "staff"
	// RoleRecruiter sources and screens candidates.
	RoleRecruiter Role = "recruiter"
	// RoleCoordinator schedules interviews and tracks workflow stages.
	RoleCoordinator Role = "coordinator"
	// RoleVisaOfficer handles visa documentation stages.
	RoleVisaOfficer Role = "visaOfficer"
	// RoleAccountant manages payments and financial records.
	RoleAccountant Role = "accountant"
)

// legacy role aliases still emitted by older backend records.
var roleAliases = map[string]Role{
	"agency_owner":  RoleOwner,
	"agency_member": RoleStaff,
}

var knownRoles = map[Role]bool{
	RoleAdmin:       true,
	RoleOwner:       true,
	RoleManager:     true,
	RoleStaff:       true,
	RoleRecruiter:   true,
	RoleCoordinator: true,
	RoleVisaOfficer: true,
	RoleAccountant:  true,
}

// Normalize maps a raw role string to its canonical [Role]. Legacy aliases
// are rewritten; anything else passes through trimmed, so unknown roles stay
// visible in audit logs while resolving to zero access.
func Normalize(raw string) Role {
	trimmed := strings.TrimSpace(raw)
	if alias, ok := roleAliases[trimmed]; ok {
		return alias
	}
	return Role(trimmed)
}

// Known reports whether role is part of the fixed role enumeration after
// normalization.
func Known(raw string) bool {
	return knownRoles[Normalize(raw)]
}

// AgencyRoles lists every agency-level role, in display order. Platform
// admin is deliberately excluded.
func AgencyRoles() []Role {
	return []Role{
		RoleOwner,
		RoleManager,
		RoleStaff,
		RoleRecruiter,
		RoleCoordinator,
		RoleVisaOfficer,
		RoleAccountant,
	}
}
