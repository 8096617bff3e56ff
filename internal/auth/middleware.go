package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/repository"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

const principalKeyLocal = "auth_principal"

// AccessGuard validates bearer tokens and resolves principals. The role is
// read from the token; the store round trip is an existence check so tokens
// minted for since-deleted accounts are rejected.
type AccessGuard struct {
	tokens     *TokenManager
	principals repository.PrincipalRepository
	cache      *PrincipalCache
}

// NewAccessGuard constructs the middleware.
func NewAccessGuard(tokens *TokenManager, principals repository.PrincipalRepository, cache *PrincipalCache) *AccessGuard {
	return &AccessGuard{tokens: tokens, principals: principals, cache: cache}
}

// Handle enforces authentication for protected routes.
func (g *AccessGuard) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("access token required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := g.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	role := claims.UserType
	var principal *domain.Principal
	if email, ok := g.cache.Get(c.UserContext(), role, claims.UserID); ok {
		principal = &domain.Principal{ID: claims.UserID, Email: email, Role: role}
	} else {
		principal, err = g.principals.GetByID(c.UserContext(), role, claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewPrincipalNotFound()
			}
			return apperrors.MapError(err)
		}
		g.cache.Mark(c.UserContext(), role, principal.ID, principal.Email)
	}

	c.Locals(principalKeyLocal, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKeyLocal)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
