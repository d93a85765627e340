package routing

import "github.com/example/festisolde/internal/model"

// Access is the level a route requires.
type Access int

const (
	Public Access = iota
	Authenticated
	VendorOnly
	AdminOnly
)

// Guard returns where to redirect a session that may not enter a route with
// the given access level. ok is true when entry is allowed.
func Guard(access Access, session *model.Session) (redirect Route, ok bool) {
	switch access {
	case Authenticated:
		if session == nil {
			return RouteLogin, false
		}
	case VendorOnly:
		if session == nil {
			return RouteLogin, false
		}
		if session.Role != model.RoleVendor {
			return RouteAccount, false
		}
	case AdminOnly:
		if session == nil {
			return RouteLogin, false
		}
		if session.Role != model.RoleAdmin {
			return RouteHome, false
		}
	}
	return "", true
}
