package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/flightdesk/flightdesk/internal/record"
)

// Frame is an immutable, lazily evaluated query over one table. Every
// transformation returns a new Frame; nothing reaches the warehouse until
// Collect is called.
type Frame struct {
	session  *Session
	table    string
	filters  []Expr
	renames  map[string]string
	groupBy  []Expr
	aggs     []Aliased
	grouped  bool
	orderBy  []Order
	limit    int
	hasLimit bool
	err      error
}

type GroupedFrame struct {
	frame *Frame
}

func (f *Frame) clone() *Frame {
	next := *f
	next.filters = append([]Expr(nil), f.filters...)
	next.groupBy = append([]Expr(nil), f.groupBy...)
	next.aggs = append([]Aliased(nil), f.aggs...)
	next.orderBy = append([]Order(nil), f.orderBy...)
	next.renames = make(map[string]string, len(f.renames))
	for alias, source := range f.renames {
		next.renames[alias] = source
	}
	return &next
}

func (f *Frame) Filter(predicate Expr) *Frame {
	next := f.clone()
	if next.grouped {
		next.err = fmt.Errorf("filter after aggregation is not supported")
		return next
	}
	next.filters = append(next.filters, predicate)
	return next
}

// WithColumnRenamed exposes existing under alias. Later references to the
// alias resolve to the source column.
func (f *Frame) WithColumnRenamed(existing, alias string) *Frame {
	next := f.clone()
	if strings.TrimSpace(existing) == "" || strings.TrimSpace(alias) == "" {
		next.err = fmt.Errorf("rename requires both column and alias")
		return next
	}
	if source, ok := next.renames[existing]; ok {
		existing = source
	}
	next.renames[alias] = existing
	return next
}

func (f *Frame) GroupBy(columns ...string) *GroupedFrame {
	next := f.clone()
	if next.grouped {
		next.err = fmt.Errorf("frame is already aggregated")
	}
	for _, name := range columns {
		next.groupBy = append(next.groupBy, Col(name))
	}
	return &GroupedFrame{frame: next}
}

func (g *GroupedFrame) Agg(aggs ...Aliased) *Frame {
	next := g.frame.clone()
	next.aggs = append(next.aggs, aggs...)
	next.grouped = true
	return next
}

func (f *Frame) Sort(orders ...Order) *Frame {
	next := f.clone()
	next.orderBy = append(next.orderBy, orders...)
	return next
}

func (f *Frame) Limit(n int) *Frame {
	next := f.clone()
	if n < 0 {
		next.err = fmt.Errorf("limit must be >= 0")
		return next
	}
	next.limit = n
	next.hasLimit = true
	return next
}

// Build renders the frame as a parameterized SELECT. Placeholders use the
// $n form, which both DuckDB and Postgres accept.
func (f *Frame) Build() (string, []any, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	if strings.TrimSpace(f.table) == "" {
		return "", nil, fmt.Errorf("table name is required")
	}
	r := &renderer{renames: f.renames}

	projections, err := f.projections(r)
	if err != nil {
		return "", nil, err
	}

	var sqlText strings.Builder
	sqlText.WriteString("SELECT ")
	sqlText.WriteString(strings.Join(projections, ", "))
	sqlText.WriteString(" FROM ")
	sqlText.WriteString(quoteIdent(f.table))

	if len(f.filters) > 0 {
		conditions := make([]string, 0, len(f.filters))
		for _, filter := range f.filters {
			rendered, err := filter.render(r)
			if err != nil {
				return "", nil, fmt.Errorf("render filter: %w", err)
			}
			conditions = append(conditions, rendered)
		}
		sqlText.WriteString(" WHERE ")
		sqlText.WriteString(strings.Join(conditions, " AND "))
	}

	if len(f.groupBy) > 0 {
		keys := make([]string, 0, len(f.groupBy))
		for _, key := range f.groupBy {
			rendered, err := key.render(r)
			if err != nil {
				return "", nil, fmt.Errorf("render group key: %w", err)
			}
			keys = append(keys, rendered)
		}
		sqlText.WriteString(" GROUP BY ")
		sqlText.WriteString(strings.Join(keys, ", "))
	}

	if len(f.orderBy) > 0 {
		orders := make([]string, 0, len(f.orderBy))
		for _, order := range f.orderBy {
			rendered, err := f.renderOrder(r, order)
			if err != nil {
				return "", nil, fmt.Errorf("render order: %w", err)
			}
			orders = append(orders, rendered)
		}
		sqlText.WriteString(" ORDER BY ")
		sqlText.WriteString(strings.Join(orders, ", "))
	}

	if f.hasLimit {
		sqlText.WriteString(" LIMIT ")
		sqlText.WriteString(r.bind(int64(f.limit)))
	}

	return sqlText.String(), r.args, nil
}

func (f *Frame) projections(r *renderer) ([]string, error) {
	if !f.grouped {
		projections := []string{"*"}
		for _, alias := range sortedKeys(f.renames) {
			projections = append(projections, fmt.Sprintf("%s AS %s", quoteIdent(f.renames[alias]), quoteIdent(alias)))
		}
		return projections, nil
	}

	projections := make([]string, 0, len(f.groupBy)+len(f.aggs))
	for _, key := range f.groupBy {
		rendered, err := key.render(r)
		if err != nil {
			return nil, fmt.Errorf("render group key: %w", err)
		}
		if named, ok := key.(column); ok && f.renames[named.name] != "" {
			rendered = fmt.Sprintf("%s AS %s", rendered, quoteIdent(named.name))
		}
		projections = append(projections, rendered)
	}
	for _, agg := range f.aggs {
		if strings.TrimSpace(agg.Alias) == "" {
			return nil, fmt.Errorf("aggregate alias is required")
		}
		rendered, err := agg.Expr.render(r)
		if err != nil {
			return nil, fmt.Errorf("render aggregate %q: %w", agg.Alias, err)
		}
		projections = append(projections, fmt.Sprintf("%s AS %s", rendered, quoteIdent(agg.Alias)))
	}
	return projections, nil
}

// Aggregate aliases are output names, so ordering by one must not be
// resolved through the rename table.
func (f *Frame) renderOrder(r *renderer, order Order) (string, error) {
	rendered := ""
	if named, ok := order.Expr.(column); ok && f.isAggregateAlias(named.name) {
		rendered = quoteIdent(named.name)
	} else {
		var err error
		rendered, err = order.Expr.render(r)
		if err != nil {
			return "", err
		}
	}
	if order.Desc {
		return rendered + " DESC", nil
	}
	return rendered + " ASC", nil
}

func (f *Frame) isAggregateAlias(name string) bool {
	for _, agg := range f.aggs {
		if agg.Alias == name {
			return true
		}
	}
	return false
}

// Collect builds the frame and materializes every row.
func (f *Frame) Collect(ctx context.Context) ([]record.Map, error) {
	if f.session == nil {
		return nil, fmt.Errorf("frame is not bound to a session")
	}
	sqlText, args, err := f.Build()
	if err != nil {
		return nil, err
	}
	return f.session.Query(ctx, sqlText, args...)
}
