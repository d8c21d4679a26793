package rbac

// NavItem describes one navigation entry of the portal shell.
type NavItem struct {
	Path        string
	Label       string
	Icon        string
	Description string
	Roles       []Role
}

// navItems is the full ordered navigation list. AccessibleNavItems preserves
// this order when filtering.
var navItems = []NavItem{
	{
		Path:        "/dashboard",
		Label:       "Dashboard",
		Icon:        "home",
		Description: "Overview of jobs, applications, and upcoming interviews",
		Roles:       []Role{RoleAdmin, RoleOwner, RoleManager, RoleStaff, RoleRecruiter, RoleCoordinator, RoleVisaOfficer, RoleAccountant},
	},
	{
		Path:        "/jobs",
		Label:       "Jobs",
		Icon:        "briefcase",
		Description: "Published job postings and demand letters",
		Roles:       []Role{RoleOwner, RoleManager, RoleStaff, RoleRecruiter},
	},
	{
		Path:        "/drafts",
		Label:       "Drafts",
		Icon:        "file-text",
		Description: "Unpublished job postings",
		Roles:       []Role{RoleOwner, RoleManager, RoleRecruiter},
	},
	{
		Path:        "/applications",
		Label:       "Applications",
		Icon:        "users",
		Description: "Candidate applications and shortlists",
		Roles:       []Role{RoleOwner, RoleManager, RoleStaff, RoleRecruiter, RoleCoordinator},
	},
	{
		Path:        "/interviews",
		Label:       "Interviews",
		Icon:        "calendar",
		Description: "Interview schedule and outcomes",
		Roles:       []Role{RoleOwner, RoleManager, RoleStaff, RoleRecruiter, RoleCoordinator},
	},
	{
		Path:        "/workflow",
		Label:       "Workflow",
		Icon:        "git-branch",
		Description: "Post-selection stages: medical, visa, ticketing, departure",
		Roles:       []Role{RoleOwner, RoleManager, RoleRecruiter, RoleCoordinator, RoleVisaOfficer, RoleAccountant},
	},
	{
		Path:        "/team",
		Label:       "Team Members",
		Icon:        "user-plus",
		Description: "Agency staff accounts and roles",
		Roles:       []Role{RoleOwner, RoleManager},
	},
	{
		Path:        "/reports",
		Label:       "Reports",
		Icon:        "bar-chart",
		Description: "Placement and financial reports",
		Roles:       []Role{RoleAdmin, RoleOwner, RoleManager, RoleAccountant},
	},
	{
		Path:        "/settings",
		Label:       "Settings",
		Icon:        "settings",
		Description: "Agency profile, license, and billing",
		Roles:       []Role{RoleOwner},
	},
	{
		Path:        "/admin",
		Label:       "Admin Panel",
		Icon:        "shield",
		Description: "Platform administration",
		Roles:       []Role{RoleAdmin},
	},
}

// AccessibleNavItems filters the static navigation list by role, preserving
// order. Unknown roles get an empty list.
func AccessibleNavItems(rawRole string) []NavItem {
	role := Normalize(rawRole)
	var out []NavItem
	for _, item := range navItems {
		for _, allowed := range item.Roles {
			if allowed == role {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
