// Package scope rewrites data-access operations so tenant isolation cannot be
// forgotten at a call site. Repositories classify each statement as a read,
// create or mutate against a table; the scope merges the active tenant into the
// filter or payload before the SQL reaches Postgres.
package scope

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocklot/stocklot_erp_app/internal/tenant"
)

// OpKind classifies a data-access operation for tenant scoping.
type OpKind int

const (
	// OpRead covers list/find/count/aggregate statements.
	OpRead OpKind = iota
	// OpCreate covers single and bulk inserts.
	OpCreate
	// OpMutate covers update/delete/upsert statements.
	OpMutate
)

// scopedTables is the closed set of tenant-scoped tables. Reference data
// (currencies, units) deliberately stays outside it and passes through
// untouched.
var scopedTables = map[string]struct{}{
	"account_heads":     {},
	"journal_entries":   {},
	"journal_lines":     {},
	"journal_sequences": {},
	"invoices":          {},
	"payments":          {},
	"expenses":          {},
	"goods_receipts":    {},
	"users":             {},
}

// IsScoped reports whether the table belongs to the tenant-scoped set.
func IsScoped(table string) bool {
	_, ok := scopedTables[table]
	return ok
}

// Filter merges the active tenant into a WHERE fragment for read- and
// mutate-class operations. The fragment uses positional placeholders $1..$n
// matching args; the tenant predicate is appended conjunctively as $n+1 so a
// caller can never read or mutate a row outside its tenant, even with a
// correct-looking ID.
//
// In system mode (tenant.WithSystem) the fragment passes through unchanged.
// With neither a tenant nor system mode the operation is rejected: silently
// unscoped access is never a fallback.
func Filter(ctx context.Context, kind OpKind, table string, where string, args []any) (string, []any, error) {
	if kind == OpCreate {
		return "", nil, fmt.Errorf("scope: create-class operations take Stamp, not Filter")
	}
	if !IsScoped(table) || tenant.IsSystem(ctx) {
		return where, args, nil
	}

	tenantID, err := tenant.RequireTenant(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s on %s", err, kindName(kind), table)
	}

	args = append(args, tenantID)
	predicate := fmt.Sprintf("tenant_id = $%d", len(args))
	if strings.TrimSpace(where) == "" {
		return predicate, args, nil
	}
	return "(" + where + ") AND " + predicate, args, nil
}

// Stamp injects the active tenant into a create-class payload. Columns and
// values are parallel slices destined for an INSERT. A declared tenant_id is
// honored only in system mode, where cross-tenant bootstrap code runs; with a
// tenant bound, the context tenant always wins, so a tenant-scoped caller can
// never write a row it does not own.
func Stamp(ctx context.Context, table string, columns []string, values []any) ([]string, []any, error) {
	if !IsScoped(table) || tenant.IsSystem(ctx) {
		return columns, values, nil
	}

	tenantID, err := tenant.RequireTenant(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: insert into %s", err, table)
	}

	for i, col := range columns {
		if col == "tenant_id" {
			values[i] = tenantID
			return columns, values, nil
		}
	}
	return append(columns, "tenant_id"), append(values, tenantID), nil
}

// TenantFor resolves the tenant a create-class row should be stamped with,
// for callers that assemble payloads as structs rather than column lists.
func TenantFor(ctx context.Context, table string) (string, error) {
	if !IsScoped(table) || tenant.IsSystem(ctx) {
		return "", nil
	}
	tenantID, err := tenant.RequireTenant(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: insert into %s", err, table)
	}
	return tenantID, nil
}

func kindName(kind OpKind) string {
	switch kind {
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpMutate:
		return "mutate"
	default:
		return "unknown"
	}
}
