// Package routing decides where a user lands after authentication and which
// areas a session may enter.
package routing

import (
	"context"
	"sync"
	"time"

	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
)

// Route is an application path.
type Route string

const (
	RouteHome            Route = "/"
	RouteAdminConsole    Route = "/admin-general"
	RouteVendorDashboard Route = "/vendor/dashboard"
	RouteCreateShop      Route = "/vendor/create-shop"
	RouteLogin           Route = "/auth/login"
	RouteAccount         Route = "/account"
)

// DefaultShopLookupTimeout bounds the shop ownership query.
const DefaultShopLookupTimeout = 5 * time.Second

var logger = logging.New("routing")

// ShopOwnership answers whether a user owns a shop.
type ShopOwnership interface {
	OwnsShop(ctx context.Context, userID string) (bool, error)
}

// Router is the post-authentication landing decision of one client session.
type Router struct {
	shops   ShopOwnership
	timeout time.Duration

	mu     sync.Mutex
	resume Route
}

func NewRouter(shops ShopOwnership, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = DefaultShopLookupTimeout
	}
	return &Router{shops: shops, timeout: timeout}
}

// StashResumePath remembers where an interrupted action should continue
// after login. Only customers are sent there.
func (r *Router) StashResumePath(path Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resume = path
}

// ResumePath returns the stashed path, if any.
func (r *Router) ResumePath() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resume, r.resume != ""
}

// Decide returns the landing route for a session. A nil session yields no
// decision. Ownership lookup failures count as "no shop".
func (r *Router) Decide(ctx context.Context, session *model.Session) (Route, bool) {
	if session == nil {
		return "", false
	}

	switch session.Role {
	case model.RoleAdmin:
		return RouteAdminConsole, true
	case model.RoleVendor:
		if r.ownsShop(ctx, session.UserID) {
			return RouteVendorDashboard, true
		}
		return RouteCreateShop, true
	default:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.resume != "" {
			dest := r.resume
			r.resume = ""
			return dest, true
		}
		return RouteHome, true
	}
}

func (r *Router) ownsShop(ctx context.Context, userID string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	owns, err := r.shops.OwnsShop(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("shop ownership lookup failed, routing to onboarding")
		return false
	}
	return owns
}
