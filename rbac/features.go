package rbac

// Feature is a named functional area of the portal gated by role.
type Feature string

const (
	// FeatureDashboard is an exported constant used by portal navigation guards.
	FeatureDashboard Feature = "dashboard"
	// FeatureJobs is an exported constant used by portal navigation guards.
	FeatureJobs Feature = "jobs"
	// FeatureDrafts is an exported constant used by portal navigation guards.
	FeatureDrafts Feature = "drafts"
	// FeatureApplications is an exported constant used by portal navigation guards.
	FeatureApplications Feature = "applications"
	// FeatureInterviews is an exported constant used by portal navigation guards.
	FeatureInterviews Feature = "interviews"
	// FeatureWorkflow is an exported constant used by portal navigation guards.
	FeatureWorkflow Feature = "workflow"
	// FeatureTeamMembers is an exported constant used by portal navigation guards.
	FeatureTeamMembers Feature = "teamMembers"
	// FeatureSettings is an exported constant used by portal navigation guards.
	FeatureSettings Feature = "settings"
	// FeatureReports is an exported constant used by portal navigation guards.
	FeatureReports Feature = "reports"
	// FeatureAdminPanel is an exported constant used by portal navigation guards.
	FeatureAdminPanel Feature = "adminPanel"
)

// Action is a per-feature operation name.
type Action string

const (
	// ActionView is an exported constant used by portal UI guards.
	ActionView Action = "view"
	// ActionCreate is an exported constant used by portal UI guards.
	ActionCreate Action = "create"
	// ActionEdit is an exported constant used by portal UI guards.
	ActionEdit Action = "edit"
	// ActionDelete is an exported constant used by portal UI guards.
	ActionDelete Action = "delete"
	// ActionPublish is an exported constant used by portal UI guards.
	ActionPublish Action = "publish"
	// ActionShortlist is an exported constant used by portal UI guards.
	ActionShortlist Action = "shortlist"
	// ActionReject is an exported constant used by portal UI guards.
	ActionReject Action = "reject"
	// ActionSchedule is an exported constant used by portal UI guards.
	ActionSchedule Action = "schedule"
	// ActionConclude is an exported constant used by portal UI guards.
	ActionConclude Action = "conclude"
	// ActionAdvance is an exported constant used by portal UI guards.
	ActionAdvance Action = "advance"
	// ActionInvite is an exported constant used by portal UI guards.
	ActionInvite Action = "invite"
	// ActionRemove is an exported constant used by portal UI guards.
	ActionRemove Action = "remove"
	// ActionExport is an exported constant used by portal UI guards.
	ActionExport Action = "export"
)

// featureAccess maps each role to the features it may open at all. Absent
// entries mean no access.
var featureAccess = map[Role]map[Feature]bool{
	RoleAdmin: {
		FeatureDashboard:  true,
		FeatureReports:    true,
		FeatureAdminPanel: true,
	},
	RoleOwner: {
		FeatureDashboard:    true,
		FeatureJobs:         true,
		FeatureDrafts:       true,
		FeatureApplications: true,
		FeatureInterviews:   true,
		FeatureWorkflow:     true,
		FeatureTeamMembers:  true,
		FeatureSettings:     true,
		FeatureReports:      true,
	},
	RoleManager: {
		FeatureDashboard:    true,
		FeatureJobs:         true,
		FeatureDrafts:       true,
		FeatureApplications: true,
		FeatureInterviews:   true,
		FeatureWorkflow:     true,
		FeatureTeamMembers:  true,
		FeatureReports:      true,
	},
	RoleStaff: {
		FeatureDashboard:    true,
		FeatureJobs:         true,
		FeatureApplications: true,
		FeatureInterviews:   true,
	},
	RoleRecruiter: {
		FeatureDashboard:    true,
		FeatureJobs:         true,
		FeatureDrafts:       true,
		FeatureApplications: true,
		FeatureInterviews:   true,
		FeatureWorkflow:     true,
	},
	RoleCoordinator: {
		FeatureDashboard:    true,
		FeatureApplications: true,
		FeatureInterviews:   true,
		FeatureWorkflow:     true,
	},
	RoleVisaOfficer: {
		FeatureDashboard: true,
		FeatureWorkflow:  true,
	},
	RoleAccountant: {
		FeatureDashboard: true,
		FeatureWorkflow:  true,
		FeatureReports:   true,
	},
}

// actionRoles maps (feature, action) to the roles permitted to perform it.
// Pairs not present are denied for everyone.
var actionRoles = map[Feature]map[Action][]Role{
	FeatureJobs: {
		ActionView:    {RoleOwner, RoleManager, RoleStaff, RoleRecruiter},
		ActionCreate:  {RoleOwner, RoleManager, RoleRecruiter},
		ActionEdit:    {RoleOwner, RoleManager, RoleRecruiter},
		ActionDelete:  {RoleOwner, RoleManager},
		ActionPublish: {RoleOwner, RoleManager},
	},
	FeatureDrafts: {
		ActionView:   {RoleOwner, RoleManager, RoleRecruiter},
		ActionCreate: {RoleOwner, RoleManager, RoleRecruiter},
		ActionEdit:   {RoleOwner, RoleManager, RoleRecruiter},
		ActionDelete: {RoleOwner, RoleManager},
	},
	FeatureApplications: {
		ActionView:      {RoleOwner, RoleManager, RoleStaff, RoleRecruiter, RoleCoordinator},
		ActionShortlist: {RoleOwner, RoleManager, RoleRecruiter},
		ActionReject:    {RoleOwner, RoleManager, RoleRecruiter},
		ActionExport:    {RoleOwner, RoleManager},
	},
	FeatureInterviews: {
		ActionView:     {RoleOwner, RoleManager, RoleStaff, RoleRecruiter, RoleCoordinator},
		ActionSchedule: {RoleOwner, RoleManager, RoleCoordinator},
		ActionEdit:     {RoleOwner, RoleManager, RoleCoordinator},
		ActionConclude: {RoleOwner, RoleManager, RoleRecruiter, RoleCoordinator},
	},
	FeatureWorkflow: {
		ActionView:    {RoleOwner, RoleManager, RoleRecruiter, RoleCoordinator, RoleVisaOfficer, RoleAccountant},
		ActionAdvance: {RoleOwner, RoleManager, RoleCoordinator, RoleVisaOfficer, RoleAccountant},
	},
	FeatureTeamMembers: {
		ActionView:   {RoleOwner, RoleManager},
		ActionInvite: {RoleOwner, RoleManager},
		ActionEdit:   {RoleOwner},
		ActionRemove: {RoleOwner},
	},
	FeatureSettings: {
		ActionView: {RoleOwner},
		ActionEdit: {RoleOwner},
	},
	FeatureReports: {
		ActionView:   {RoleAdmin, RoleOwner, RoleManager, RoleAccountant},
		ActionExport: {RoleAdmin, RoleOwner, RoleAccountant},
	},
	FeatureAdminPanel: {
		ActionView: {RoleAdmin},
		ActionEdit: {RoleAdmin},
	},
}

// HasFeatureAccess reports whether the raw role may open the feature.
// Unknown roles and features are denied.
func HasFeatureAccess(rawRole string, feature Feature) bool {
	features, ok := featureAccess[Normalize(rawRole)]
	if !ok {
		return false
	}
	return features[feature]
}

// CanPerformAction reports whether the raw role may perform action within
// feature. Undefined (feature, action) pairs are denied for everyone.
func CanPerformAction(rawRole string, feature Feature, action Action) bool {
	actions, ok := actionRoles[feature]
	if !ok {
		return false
	}
	role := Normalize(rawRole)
	for _, allowed := range actions[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
