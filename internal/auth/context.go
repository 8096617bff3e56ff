package auth

import (
	"context"

	"github.com/spec-kit/school-api/internal/domain"
)

type principalCtxKey struct{}

// WithPrincipal stores the resolved principal on a standard context so the
// service layer can attribute actions without depending on the transport.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFrom retrieves the principal stored by the access guard.
func PrincipalFrom(ctx context.Context) (*domain.Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*domain.Principal)
	return principal, ok
}
