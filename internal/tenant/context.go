// Package tenant carries the per-request tenant identity through a call chain.
//
// The identity rides on context.Context so it follows the request across every
// goroutine and I/O boundary spawned during handling, and can never leak into a
// concurrently handled request. A process-wide variable would.
package tenant

import (
	"context"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
)

type tenantContextKey struct{}
type systemContextKey struct{}

// WithTenant returns a context bound to the given tenant. Every data access made
// with the returned context is scoped to that tenant by the repository layer.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

// FromContext extracts the bound tenant ID, if any.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tenantContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// RequireTenant extracts the bound tenant ID or fails. Request-path code uses
// this so a missing binding surfaces immediately instead of producing
// tenant-less rows.
func RequireTenant(ctx context.Context) (string, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return "", apperrors.ErrTenantRequired
	}
	return id, nil
}

// WithSystem marks the context for administrative access: tenant scoping becomes
// a passthrough. Only bootstrap, seeding and maintenance code may use this;
// request handlers must never.
func WithSystem(ctx context.Context) context.Context {
	return context.WithValue(ctx, systemContextKey{}, true)
}

// IsSystem reports whether the context is in administrative access mode.
func IsSystem(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := ctx.Value(systemContextKey{}).(bool)
	return ok && v
}
