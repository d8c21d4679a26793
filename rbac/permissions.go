package rbac

// Permission tags issued into the session at login. The catalog is fixed;
// permissions are opaque strings to everything outside this package.
const (
	PermJobsView         = "jobs.view"
	PermJobsCreate       = "jobs.create"
	PermJobsEdit         = "jobs.edit"
	PermJobsDelete       = "jobs.delete"
	PermJobsPublish      = "jobs.publish"
	PermDraftsManage     = "drafts.manage"
	PermApplicationsView = "applications.view"
	PermApplicationsTriage = "applications.triage"
	PermInterviewsView     = "interviews.view"
	PermInterviewsSchedule = "interviews.schedule"
	PermWorkflowView       = "workflow.view"
	PermWorkflowAdvance    = "workflow.advance"
	PermTeamView           = "team.view"
	PermTeamManage         = "team.manage"
	PermSettingsManage     = "settings.manage"
	PermReportsView        = "reports.view"
	PermReportsExport      = "reports.export"
	PermAdminPlatform      = "admin.platform"
)

var rolePermissions = map[Role][]string{
	RoleAdmin: {
		PermAdminPlatform,
		PermReportsView,
		PermReportsExport,
	},
	RoleOwner: {
		PermJobsView, PermJobsCreate, PermJobsEdit, PermJobsDelete, PermJobsPublish,
		PermDraftsManage,
		PermApplicationsView, PermApplicationsTriage,
		PermInterviewsView, PermInterviewsSchedule,
		PermWorkflowView, PermWorkflowAdvance,
		PermTeamView, PermTeamManage,
		PermSettingsManage,
		PermReportsView, PermReportsExport,
	},
	RoleManager: {
		PermJobsView, PermJobsCreate, PermJobsEdit, PermJobsDelete, PermJobsPublish,
		PermDraftsManage,
		PermApplicationsView, PermApplicationsTriage,
		PermInterviewsView, PermInterviewsSchedule,
		PermWorkflowView, PermWorkflowAdvance,
		PermTeamView,
		PermReportsView,
	},
	RoleStaff: {
		PermJobsView,
		PermApplicationsView,
		PermInterviewsView,
	},
	RoleRecruiter: {
		PermJobsView, PermJobsCreate, PermJobsEdit,
		PermDraftsManage,
		PermApplicationsView, PermApplicationsTriage,
		PermInterviewsView,
		PermWorkflowView,
	},
	RoleCoordinator: {
		PermApplicationsView,
		PermInterviewsView, PermInterviewsSchedule,
		PermWorkflowView, PermWorkflowAdvance,
	},
	RoleVisaOfficer: {
		PermWorkflowView, PermWorkflowAdvance,
	},
	RoleAccountant: {
		PermWorkflowView, PermWorkflowAdvance,
		PermReportsView, PermReportsExport,
	},
}

// PermissionsForRole returns a copy of the permission catalog entry for the
// raw role. Unknown roles resolve to an empty list, never an error.
func PermissionsForRole(rawRole string) []string {
	perms, ok := rolePermissions[Normalize(rawRole)]
	if !ok {
		return []string{}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the raw role's catalog entry contains perm.
func HasPermission(rawRole, perm string) bool {
	for _, p := range rolePermissions[Normalize(rawRole)] {
		if p == perm {
			return true
		}
	}
	return false
}
