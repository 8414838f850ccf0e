package nav

import "github.com/example/rideflow/internal/models"

// Section is one navigable screen of a dashboard.
type Section struct {
	Key   string `json:"key"`
	Route string `json:"route"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	// Hidden sections are reachable by deep link but not listed in menus.
	Hidden bool `json:"hidden,omitempty"`
}

const LoginRoute = "/login"

// capabilities is the single source of truth for what each role may see.
var capabilities = map[models.Role][]Section{
	models.RoleRider: {
		{Key: "dashboard", Route: "/features/rider", Label: "Dashboard", Icon: "home"},
		{Key: "request-ride", Route: "/features/rider/add-ride", Label: "Request Ride", Icon: "map-pin"},
		{Key: "history", Route: "/features/rider/ride-history", Label: "Ride History", Icon: "history"},
		{Key: "ride-details", Route: "/features/rider/ride-details/:id", Label: "Ride Details", Icon: "file-text", Hidden: true},
		{Key: "profile", Route: "/features/rider/profile", Label: "Profile", Icon: "user"},
	},
	models.RoleDriver: {
		{Key: "dashboard", Route: "/features/driver", Label: "Dashboard", Icon: "home"},
		{Key: "availability", Route: "/features/driver/availability", Label: "Availability & Requests", Icon: "toggle-right"},
		{Key: "active-ride", Route: "/features/driver/active-ride", Label: "Active Ride", Icon: "car"},
		{Key: "earnings", Route: "/features/driver/earnings", Label: "Earnings", Icon: "dollar-sign"},
		{Key: "profile", Route: "/features/driver/profile", Label: "Profile", Icon: "user"},
	},
	models.RoleAdmin: {
		{Key: "dashboard", Route: "/features/admin", Label: "Dashboard", Icon: "home"},
		{Key: "users", Route: "/features/admin/users", Label: "User Management", Icon: "users"},
		{Key: "rides", Route: "/features/admin/rides", Label: "Ride Oversight", Icon: "list"},
		{Key: "profile", Route: "/features/admin/profile", Label: "Profile", Icon: "user"},
	},
}

// SectionsFor returns a copy of the role's sections. Unknown roles get none.
func SectionsFor(role models.Role) []Section {
	s := capabilities[role]
	out := make([]Section, len(s))
	copy(out, s)
	return out
}

// Visible drops hidden sections.
func Visible(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if !s.Hidden {
			out = append(out, s)
		}
	}
	return out
}
