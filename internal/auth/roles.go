package auth

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/noryangjin/auction-server/internal/domain"
	apperrors "github.com/noryangjin/auction-server/pkg/util/errorutil"
)

const accountKey = "auth_account"

// IdentityResolver loads the stored account behind an authenticated identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity string) (*domain.User, error)
}

// RequireAuthenticated ensures the auth middleware accepted the caller.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireRole resolves the caller through the store and ensures it is an active account
// holding one of the allowed roles. The resolved account is available via AccountFromContext.
func RequireRole(resolver IdentityResolver, allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		user, err := resolver.Resolve(c.UserContext(), identity)
		if err != nil {
			return err
		}
		if !user.Status().CanAct() {
			return domain.NewAuthorizationError("account is not active")
		}
		if _, exists := allowedSet[user.Role()]; !exists {
			return domain.NewAuthorizationError("insufficient role")
		}
		c.Locals(accountKey, user)
		return c.Next()
	}
}

// AccountFromContext returns the account resolved by RequireRole.
func AccountFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(accountKey).(*domain.User)
	return user, ok && user != nil
}
