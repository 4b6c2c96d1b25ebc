package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Condition is one per-field constraint in a Query. Zero-value operator
// fields are ignored; Equals applies when no operator is set.
type Condition struct {
	Equals   any
	GTE      any
	LTE      any
	Contains string
}

// OrderBy sorts the result set on a single field.
type OrderBy struct {
	Field string
	Desc  bool
}

// Query is a filter-sort-limit read over one collection.
type Query struct {
	Where   map[string]Condition
	OrderBy *OrderBy
	Limit   int
}

// Run executes a query as an in-memory scan over the full collection.
func (s *Store) Run(ctx context.Context, collection string, q Query) ([]Record, error) {
	records, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, len(records))
	for _, record := range records {
		if matchesQuery(record, q.Where) {
			result = append(result, record)
		}
	}

	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.OrderBy.Desc
		sort.SliceStable(result, func(i, j int) bool {
			less := valueLess(result[i][field], result[j][field])
			if desc {
				return valueLess(result[j][field], result[i][field])
			}
			return less
		})
	}

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func matchesQuery(record Record, where map[string]Condition) bool {
	for field, cond := range where {
		v := record[field]
		if cond.Contains != "" {
			if !strings.Contains(fmt.Sprint(v), cond.Contains) {
				return false
			}
			continue
		}
		if cond.GTE != nil || cond.LTE != nil {
			if cond.GTE != nil && valueLess(v, cond.GTE) {
				return false
			}
			if cond.LTE != nil && valueLess(cond.LTE, v) {
				return false
			}
			continue
		}
		if !valueEqual(v, cond.Equals) {
			return false
		}
	}
	return true
}

func matchesEquality(record Record, condition Record) bool {
	for field, want := range condition {
		if !valueEqual(record[field], want) {
			return false
		}
	}
	return true
}

// valueEqual compares numerically when both sides are numbers, otherwise by
// rendered string. Records decoded from disk carry float64 where callers
// hold int64.
func valueEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func valueLess(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
