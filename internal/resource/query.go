// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	queryutil "github.com/johnmave126/filmsoc-website-backend/pkg/query"
)

// Op is a comparison operator in a query-string filter.
type Op string

const (
	OpEq Op = "eq"
	OpNe Op = "ne"
	OpLt Op = "lt"
	OpLe Op = "le"
	OpGt Op = "gt"
	OpGe Op = "ge"
	OpIn Op = "in"
)

var knownOps = map[string]Op{
	"eq": OpEq, "ne": OpNe, "lt": OpLt, "le": OpLe,
	"gt": OpGt, "ge": OpGe, "in": OpIn,
}

// reservedParams are query keys with engine-level meaning; they never
// become filters.
var reservedParams = map[string]bool{
	"page": true, "limit": true, "order": true, "query": true,
}

// Filter is one parsed query-string predicate. A record matches when
// its field satisfies the operator against at least one of Values;
// distinct filters are conjoined.
type Filter struct {
	Field  string
	Op     Op
	Values []string
}

// ParseFilters extracts filters from a query string. A key of the form
// "field__op" selects an operator; a bare "field" means equality.
// Multiple values for the same key widen that filter (OR). Keys whose
// field path is not in the allowed set are dropped, matching the
// engine rule that unknown filters are silently ignored.
func ParseFilters(values url.Values, allowed []string) []Filter {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var filters []Filter
	for _, key := range keys {
		if reservedParams[key] {
			continue
		}
		field, op := splitFilterKey(key)
		if !contains(allowed, field) {
			continue
		}
		vals := values[key]
		if op == OpIn {
			var expanded []string
			for _, v := range vals {
				expanded = append(expanded, queryutil.StringSlice(v)...)
			}
			vals = expanded
		}
		if len(vals) == 0 {
			continue
		}
		filters = append(filters, Filter{Field: field, Op: op, Values: vals})
	}
	return filters
}

// splitFilterKey separates "release__ge" into ("release", OpGe). Only
// the last "__" segment is eligible as an operator, so nested paths
// such as "hold_by__itsc" pass through intact as equality filters.
func splitFilterKey(key string) (string, Op) {
	idx := strings.LastIndex(key, "__")
	if idx < 0 {
		return key, OpEq
	}
	if op, ok := knownOps[key[idx+2:]]; ok {
		return key[:idx], op
	}
	return key, OpEq
}

// ApplyFilters keeps the records satisfying every filter.
func ApplyFilters(records []Record, filters []Filter) []Record {
	if len(filters) == 0 {
		return records
	}
	out := records[:0:0]
	for _, rec := range records {
		if recordMatches(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func recordMatches(rec Record, filters []Filter) bool {
	for _, f := range filters {
		val, ok := lookupPath(rec, f.Field)
		if !ok {
			return false
		}
		if !anyValueMatches(val, f.Op, f.Values) {
			return false
		}
	}
	return true
}

func anyValueMatches(val any, op Op, args []string) bool {
	for _, arg := range args {
		if valueMatches(val, op, arg) {
			return true
		}
	}
	return false
}

// valueMatches compares a record value against a raw query-string
// argument, coercing the argument to the value's type. Arguments that
// do not parse as the value's type never match rather than erroring:
// a malformed filter should narrow results, not break the request.
func valueMatches(val any, op Op, arg string) bool {
	switch v := val.(type) {
	case nil:
		eq := arg == "" || strings.EqualFold(arg, "null")
		return applyEquality(op, eq)
	case bool:
		b, err := strconv.ParseBool(arg)
		if err != nil {
			return false
		}
		return applyEquality(op, v == b)
	case time.Time:
		t, err := parseTimeArg(arg)
		if err != nil {
			return false
		}
		return applyOrder(op, compareTimes(v, t))
	case string:
		if op == OpEq || op == OpNe || op == OpIn {
			return applyEquality(op, v == arg)
		}
		return applyOrder(op, strings.Compare(v, arg))
	default:
		if num, ok := toFloat(val); ok {
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return false
			}
			return applyOrder(op, compareFloats(num, n))
		}
		return false
	}
}

func applyEquality(op Op, eq bool) bool {
	switch op {
	case OpEq, OpIn:
		return eq
	case OpNe:
		return !eq
	default:
		return false
	}
}

func applyOrder(op Op, cmp int) bool {
	switch op {
	case OpEq, OpIn:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

func parseTimeArg(arg string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, arg); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", arg)
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// lookupPath resolves a "__"-separated field path through nested
// Records.
func lookupPath(rec Record, path string) (any, bool) {
	segments := strings.Split(path, "__")
	var val any = rec
	for _, seg := range segments {
		m, ok := val.(Record)
		if !ok {
			return nil, false
		}
		val, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return val, true
}

// SortRecords orders records by a comma-separated key list, each key
// optionally prefixed with "-" for descending. Later keys break ties
// of earlier ones; the sort is stable so equal records keep their
// store order. Keys outside the descriptor's projected fields are
// ignored.
func SortRecords(records []Record, spec string, desc *Descriptor) {
	var keys []sortKey
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		k := sortKey{field: tok}
		if strings.HasPrefix(tok, "-") {
			k = sortKey{field: tok[1:], descending: true}
		}
		if k.field == "" || !desc.projects(k.field) {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, k := range keys {
			cmp := compareFields(records[i], records[j], k.field)
			if cmp == 0 {
				continue
			}
			if k.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

type sortKey struct {
	field      string
	descending bool
}

// compareFields orders two record values of the same field. Missing
// and nil values sort first; mismatched types fall back to their
// string forms so the ordering stays total.
func compareFields(a, b Record, field string) int {
	av, aok := a[field]
	bv, bok := b[field]
	if !aok || av == nil {
		if !bok || bv == nil {
			return 0
		}
		return -1
	}
	if !bok || bv == nil {
		return 1
	}
	if af, ok := toFloat(av); ok {
		if bf, ok := toFloat(bv); ok {
			return compareFloats(af, bf)
		}
	}
	if at, ok := av.(time.Time); ok {
		if bt, ok := bv.(time.Time); ok {
			return compareTimes(at, bt)
		}
	}
	if ab, ok := av.(bool); ok {
		if bb, ok := bv.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	as, aIsStr := av.(string)
	bs, bIsStr := bv.(string)
	if !aIsStr || !bIsStr {
		return strings.Compare(stringify(av), stringify(bv))
	}
	return strings.Compare(as, bs)
}
