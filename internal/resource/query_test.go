// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogueRecords() []Record {
	return []Record{
		{"id": int64(1), "title": "Seven", "release": time.Date(1995, 9, 22, 0, 0, 0, 0, time.UTC), "avail_type": "Available", "rank": 3.5},
		{"id": int64(2), "title": "Chungking Express", "release": time.Date(1994, 7, 14, 0, 0, 0, 0, time.UTC), "avail_type": "Borrowed", "rank": 4.2},
		{"id": int64(3), "title": "In the Mood for Love", "release": time.Date(2000, 9, 29, 0, 0, 0, 0, time.UTC), "avail_type": "Available", "rank": 4.2},
		{"id": int64(4), "title": "Infernal Affairs", "release": time.Date(2002, 12, 12, 0, 0, 0, 0, time.UTC), "avail_type": "Reserved", "rank": 4.0,
			"hold_by": Record{"itsc": "chanwk"}},
	}
}

func TestParseFilters(t *testing.T) {
	allowed := []string{"avail_type", "release", "id", "hold_by__itsc"}

	t.Run("bare key means equality", func(t *testing.T) {
		values, err := url.ParseQuery("avail_type=Available")
		require.NoError(t, err)

		filters := ParseFilters(values, allowed)
		require.Len(t, filters, 1)
		assert.Equal(t, Filter{Field: "avail_type", Op: OpEq, Values: []string{"Available"}}, filters[0])
	})

	t.Run("operator suffix", func(t *testing.T) {
		values, err := url.ParseQuery("release__ge=2000-01-01")
		require.NoError(t, err)

		filters := ParseFilters(values, allowed)
		require.Len(t, filters, 1)
		assert.Equal(t, OpGe, filters[0].Op)
		assert.Equal(t, "release", filters[0].Field)
	})

	t.Run("in splits comma lists", func(t *testing.T) {
		values, err := url.ParseQuery("id__in=1,3,4")
		require.NoError(t, err)

		filters := ParseFilters(values, allowed)
		require.Len(t, filters, 1)
		assert.Equal(t, []string{"1", "3", "4"}, filters[0].Values)
	})

	t.Run("repeated key widens one filter", func(t *testing.T) {
		values, err := url.ParseQuery("avail_type=Available&avail_type=Borrowed")
		require.NoError(t, err)

		filters := ParseFilters(values, allowed)
		require.Len(t, filters, 1)
		assert.ElementsMatch(t, []string{"Available", "Borrowed"}, filters[0].Values)
	})

	t.Run("unknown fields and reserved params ignored", func(t *testing.T) {
		values, err := url.ParseQuery("secret=1&page=2&limit=5&order=-id&query=love")
		require.NoError(t, err)

		assert.Empty(t, ParseFilters(values, allowed))
	})

	t.Run("nested path passes through", func(t *testing.T) {
		values, err := url.ParseQuery("hold_by__itsc=chanwk")
		require.NoError(t, err)

		filters := ParseFilters(values, allowed)
		require.Len(t, filters, 1)
		assert.Equal(t, "hold_by__itsc", filters[0].Field)
		assert.Equal(t, OpEq, filters[0].Op)
	})
}

func TestApplyFilters(t *testing.T) {
	records := catalogueRecords()

	t.Run("values within a filter are disjunctive", func(t *testing.T) {
		out := ApplyFilters(records, []Filter{
			{Field: "avail_type", Op: OpEq, Values: []string{"Available", "Reserved"}},
		})
		require.Len(t, out, 3)
	})

	t.Run("distinct filters are conjunctive", func(t *testing.T) {
		out := ApplyFilters(records, []Filter{
			{Field: "avail_type", Op: OpEq, Values: []string{"Available"}},
			{Field: "release", Op: OpGe, Values: []string{"2000-01-01"}},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "In the Mood for Love", out[0]["title"])
	})

	t.Run("numeric range", func(t *testing.T) {
		out := ApplyFilters(records, []Filter{
			{Field: "rank", Op: OpGt, Values: []string{"4.0"}},
		})
		require.Len(t, out, 2)
	})

	t.Run("nested path filter", func(t *testing.T) {
		out := ApplyFilters(records, []Filter{
			{Field: "hold_by__itsc", Op: OpEq, Values: []string{"chanwk"}},
		})
		require.Len(t, out, 1)
		assert.Equal(t, int64(4), out[0]["id"])
	})

	t.Run("malformed argument matches nothing", func(t *testing.T) {
		out := ApplyFilters(records, []Filter{
			{Field: "rank", Op: OpGt, Values: []string{"high"}},
		})
		assert.Empty(t, out)
	})

	t.Run("missing field excludes the record", func(t *testing.T) {
		out := ApplyFilters(records, []Filter{
			{Field: "hold_by__itsc", Op: OpNe, Values: []string{"nobody"}},
		})
		require.Len(t, out, 1)
	})
}

func TestSortRecords(t *testing.T) {
	desc := &Descriptor{Name: "disk"}

	t.Run("multi key with descending prefix", func(t *testing.T) {
		records := catalogueRecords()
		SortRecords(records, "-rank,title", desc)

		titles := make([]string, len(records))
		for i, rec := range records {
			titles[i] = rec["title"].(string)
		}
		assert.Equal(t, []string{"Chungking Express", "In the Mood for Love", "Infernal Affairs", "Seven"}, titles)
	})

	t.Run("unknown keys leave order untouched", func(t *testing.T) {
		records := catalogueRecords()
		SortRecords(records, "nonexistent", desc)
		assert.Equal(t, int64(1), records[0]["id"])
	})

	t.Run("stable on equal keys", func(t *testing.T) {
		records := catalogueRecords()
		SortRecords(records, "avail_type", desc)
		// The two Available rows keep their store order.
		assert.Equal(t, int64(1), records[0]["id"])
		assert.Equal(t, int64(3), records[1]["id"])
	})
}
