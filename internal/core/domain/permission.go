package domain

// Permission is an action checked server-side before any mutation, independent
// of what the UI decided to show.
type Permission string

const (
	PermissionCreateEventRequest    Permission = "events:create"
	PermissionViewOwnEventRequests  Permission = "events:view_own"
	PermissionViewAllEventRequests  Permission = "events:view_all"
	PermissionReviewEventRequests   Permission = "events:review"
	PermissionCancelOwnEvent        Permission = "events:cancel_own"
	PermissionCancelAnyEvent        Permission = "events:cancel_any"
	PermissionCreateResourceRequest Permission = "resources:create"
	PermissionViewAllResources      Permission = "resources:view_all"
	PermissionReviewResources       Permission = "resources:review"
	PermissionCreateFundAnalysis    Permission = "funds:create"
	PermissionViewAllFunds          Permission = "funds:view_all"
	PermissionReviewFunds           Permission = "funds:review"
	PermissionManageReports         Permission = "reports:manage"
	PermissionBookResources         Permission = "bookings:create"
	PermissionViewBookings          Permission = "bookings:view"
	PermissionCollaborate           Permission = "collaborations:create"
	PermissionManageUsers           Permission = "users:manage"
	PermissionChangePassword        Permission = "account:change_password"
)

// RoleMatrix lists the roles that hold each permission. Roles do not inherit
// from each other.
var RoleMatrix = map[Permission][]Role{
	PermissionCreateEventRequest:    {RoleAssociation},
	PermissionViewOwnEventRequests:  {RoleAssociation},
	PermissionViewAllEventRequests:  {RoleFaculty, RoleAdmin},
	PermissionReviewEventRequests:   {RoleFaculty, RoleAdmin},
	PermissionCancelOwnEvent:        {RoleAssociation},
	PermissionCancelAnyEvent:        {RoleFaculty, RoleAdmin},
	PermissionCreateResourceRequest: {RoleAssociation},
	PermissionViewAllResources:      {RoleAdmin},
	PermissionReviewResources:       {RoleAdmin},
	PermissionCreateFundAnalysis:    {RoleAssociation},
	PermissionViewAllFunds:          {RoleFaculty},
	PermissionReviewFunds:           {RoleFaculty},
	PermissionManageReports:         {RoleAssociation},
	PermissionBookResources:         {RoleAssociation},
	PermissionViewBookings:          {RoleAssociation, RoleFaculty, RoleAdmin},
	PermissionCollaborate:           {RoleAssociation},
	PermissionManageUsers:           {RoleAdmin},
	PermissionChangePassword:        {RoleAssociation, RoleFaculty, RoleAdmin},
}

// Allows reports whether role holds permission.
func (r Role) Allows(p Permission) bool {
	for _, allowed := range RoleMatrix[p] {
		if allowed == r {
			return true
		}
	}
	return false
}
