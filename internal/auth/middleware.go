package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/janseva/constituency-admin/internal/rbac"
)

type contextKey string

const principalKey contextKey = "principal"

// FailureHandler writes the response when authentication cannot complete.
// err is an *AuthError or an infrastructure error.
type FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate resolves the bearer token and stores the principal in the
// request context before calling next.
func Authenticate(resolver *Resolver, fail FailureHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Context(), BearerToken(r))
			if err != nil {
				fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func BearerToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func WithPrincipal(ctx context.Context, p *rbac.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (*rbac.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*rbac.Principal)
	return p, ok && p != nil
}
