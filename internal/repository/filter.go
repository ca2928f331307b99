package repository

import (
	"fmt"
	"strings"

	"marketplace/internal/domain"

	"github.com/google/uuid"
)

// Product sale status filter values. Any other status string leaves the
// sold state unconstrained.
const (
	StatusSold      = "SOLD"
	StatusAvailable = "AVAILABLE"
)

// ProductFilter is a conjunction of independent optional criteria. A nil
// field contributes nothing to the conjunction; a zero-valued filter matches
// every product. Criteria compose independently of order: each present field
// adds exactly one condition, so the result set is the same whichever
// subset is supplied.
type ProductFilter struct {
	Description *string    // case-insensitive substring match
	OwnerID     *uuid.UUID // exact match
	CategoryID  *uuid.UUID // exact match
	Sold        *bool      // tri-state: nil means unconstrained
}

// SoldFromStatus translates a status query string into the tri-state sold
// criterion: "SOLD" and "AVAILABLE" (case-insensitive) constrain the flag,
// anything else or empty leaves it unconstrained.
func SoldFromStatus(status string) *bool {
	switch strings.ToUpper(status) {
	case StatusSold:
		sold := true
		return &sold
	case StatusAvailable:
		sold := false
		return &sold
	default:
		return nil
	}
}

// condition is one independently-built predicate clause. Placeholders are
// numbered at join time so clause construction stays order-independent.
type condition struct {
	expr string // with %d placeholder markers
	args []any
}

func (f ProductFilter) conditions() []condition {
	var conds []condition

	if f.Description != nil {
		conds = append(conds, condition{
			expr: "description ILIKE $%d",
			args: []any{"%" + *f.Description + "%"},
		})
	}
	if f.OwnerID != nil {
		conds = append(conds, condition{expr: "owner_id = $%d", args: []any{*f.OwnerID}})
	}
	if f.CategoryID != nil {
		conds = append(conds, condition{expr: "category_id = $%d", args: []any{*f.CategoryID}})
	}
	if f.Sold != nil {
		conds = append(conds, condition{expr: "sold = $%d", args: []any{*f.Sold}})
	}

	return conds
}

// WhereClause renders the filter as a SQL WHERE clause plus its arguments.
// An empty filter yields an empty clause.
func (f ProductFilter) WhereClause() (string, []any) {
	conds := f.conditions()
	if len(conds) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, c := range conds {
		clauses = append(clauses, fmt.Sprintf(c.expr, len(args)+1))
		args = append(args, c.args...)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Matches is the in-memory form of the same conjunction, used by tests and
// any consumer holding products outside the database.
func (f ProductFilter) Matches(p *domain.Product) bool {
	if f.Description != nil &&
		!strings.Contains(strings.ToLower(p.Description), strings.ToLower(*f.Description)) {
		return false
	}
	if f.OwnerID != nil && p.OwnerID != *f.OwnerID {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.Sold != nil && p.Sold != *f.Sold {
		return false
	}
	return true
}
