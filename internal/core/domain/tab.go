package domain

// Tab identifies a dashboard panel. The same identifier can appear in more
// than one role's menu and render a different panel there.
type Tab string

const (
	TabDashboard            Tab = "dashboard"
	TabEventRequest         Tab = "event-request"
	TabResourceAvailability Tab = "resource-availability"
	TabCancelEvent          Tab = "cancel-event"
	TabResourceRequest      Tab = "resource-request"
	TabFundAnalysis         Tab = "fund-analysis"
	TabRequestStatus        Tab = "request-status"
	TabReport               Tab = "report"
	TabCollaboration        Tab = "collaboration"
	TabChangePassword       Tab = "change-password"

	TabFacultyDashboard Tab = "faculty-dashboard"
	TabFundRequest      Tab = "fund-request"

	TabAdminDashboard Tab = "admin-dashboard"
	TabUserManagement Tab = "user-management"
)

type MenuItem struct {
	Tab   Tab
	Label string
}

var menus = map[Role][]MenuItem{
	RoleAssociation: {
		{TabDashboard, "Dashboard"},
		{TabEventRequest, "Event Request"},
		{TabResourceAvailability, "Resource Availability"},
		{TabCancelEvent, "Cancel Event"},
		{TabResourceRequest, "Resource Request"},
		{TabFundAnalysis, "Fund Analysis"},
		{TabRequestStatus, "Request Status"},
		{TabReport, "Report"},
		{TabCollaboration, "Collaboration"},
		{TabChangePassword, "Change Password"},
	},
	RoleFaculty: {
		{TabFacultyDashboard, "Event Schedule"},
		{TabEventRequest, "Event Requests"},
		{TabFundRequest, "Fund Requests"},
		{TabCancelEvent, "Cancel Events"},
		{TabChangePassword, "Change Password"},
	},
	RoleAdmin: {
		{TabAdminDashboard, "Event Schedule"},
		{TabResourceRequest, "Resource Requests"},
		{TabUserManagement, "User Management"},
		{TabCancelEvent, "Cancel Events"},
		{TabChangePassword, "Change Password"},
	},
}

// Menu returns the ordered menu of role; guests have none.
func Menu(role Role) []MenuItem {
	return menus[role]
}

// DefaultTab is the first menu entry of role.
func DefaultTab(role Role) Tab {
	m := menus[role]
	if len(m) == 0 {
		return ""
	}
	return m[0].Tab
}

// HasTab reports whether tab is in role's menu.
func HasTab(role Role, tab Tab) bool {
	for _, item := range menus[role] {
		if item.Tab == tab {
			return true
		}
	}
	return false
}

// Route paths.
const (
	PathHome      = "/"
	PathSignIn    = "/auth"
	PathDashboard = "/dashboard"
	PathFaculty   = "/faculty"
	PathAdmin     = "/admin"
)

// RootPath is the dashboard root a signed-in role lands on.
func RootPath(role Role) string {
	switch role {
	case RoleAdmin:
		return PathAdmin
	case RoleFaculty:
		return PathFaculty
	case RoleAssociation:
		return PathDashboard
	default:
		return PathHome
	}
}
