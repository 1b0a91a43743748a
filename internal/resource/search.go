// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// searchToken is one parsed term of a search expression: a group name
// and the values routed to it. The default engine puts every term in
// the default group.
type searchToken struct {
	group  string
	values []string
}

// ParseSearchQuery tokenizes a search expression of the qualified
// form. Terms look like "value", "group:value" or "group:(v1 v2 v3)";
// bare terms go to the default group. Duplicate terms collapse.
func ParseSearchQuery(q string) []searchToken {
	var tokens []searchToken
	seen := make(map[string]bool)
	for _, raw := range splitTerms(q) {
		group := DefaultSearchGroup
		body := raw
		if idx := strings.Index(raw, ":"); idx > 0 {
			group = raw[:idx]
			body = raw[idx+1:]
		}
		var values []string
		switch {
		case strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")"):
			values = strings.Fields(body[1 : len(body)-1])
		case strings.HasPrefix(body, "("):
			// Unterminated group: read the remainder as a plain
			// value list.
			values = strings.Fields(body[1:])
		case body != "":
			values = []string{body}
		}
		if len(values) == 0 {
			continue
		}
		key := group + ":" + strings.Join(values, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		tokens = append(tokens, searchToken{group: group, values: values})
	}
	return tokens
}

// splitTerms splits on whitespace but keeps "group:(a b c)" together.
func splitTerms(q string) []string {
	var terms []string
	var cur strings.Builder
	depth := 0
	for _, r := range q {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if cur.Len() > 0 {
				terms = append(terms, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		terms = append(terms, cur.String())
	}
	return terms
}

// ApplySearch keeps the records matching a search expression under the
// descriptor's search groups. Every token must match (AND); a token
// matches when any of its values appears, case-folded, in any field of
// its group (OR). Tokens naming a group the descriptor does not
// configure are ignored, and an empty or all-ignored expression leaves
// the record set untouched.
func ApplySearch(records []Record, desc *Descriptor, q string) []Record {
	tokens := ParseSearchQuery(q)
	var active []searchToken
	for _, tok := range tokens {
		if len(desc.SearchGroups[tok.group]) > 0 {
			active = append(active, tok)
		}
	}
	if len(active) == 0 {
		return records
	}
	out := records[:0:0]
	for _, rec := range records {
		if searchMatches(rec, desc, active) {
			out = append(out, rec)
		}
	}
	return out
}

func searchMatches(rec Record, desc *Descriptor, tokens []searchToken) bool {
	for _, tok := range tokens {
		if !tokenMatches(rec, desc.SearchGroups[tok.group], tok.values) {
			return false
		}
	}
	return true
}

func tokenMatches(rec Record, fields []string, values []string) bool {
	for _, field := range fields {
		val, ok := lookupPath(rec, field)
		if !ok || val == nil {
			continue
		}
		haystack := foldString(stringify(val))
		for _, v := range values {
			if strings.Contains(haystack, foldString(v)) {
				return true
			}
		}
	}
	return false
}

// foldString normalizes and case-folds for matching. Folding rather
// than lowercasing keeps lookups correct for the mixed English and
// Chinese titles in the catalogue.
func foldString(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// stringify renders a field value for substring search. String slices
// join with spaces so a match against any element succeeds.
func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, " ")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
