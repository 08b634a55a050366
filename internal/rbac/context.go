package rbac

import "context"

type principalContextKey struct{}

type scopeContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, nil when unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ContextWithScope stores the derived access scope in context.
func ContextWithScope(ctx context.Context, scope AccessScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the access scope. When no scope was attached it
// returns the deny-all zero value, so data access fails closed rather than
// treating a missing scope as "no filter".
func ScopeFromContext(ctx context.Context) AccessScope {
	scope, _ := ctx.Value(scopeContextKey{}).(AccessScope)
	return scope
}
