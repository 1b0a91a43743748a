// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchDescriptor() *Descriptor {
	return &Descriptor{
		Name: "disk",
		SearchGroups: map[string][]string{
			DefaultSearchGroup: {"title_en", "title_ch", "director_en"},
			"director":         {"director_en", "director_ch"},
			"actor":            {"actors"},
		},
	}
}

func searchRecords() []Record {
	return []Record{
		{"id": int64(1), "title_en": "Chungking Express", "title_ch": "重慶森林", "director_en": "Wong Kar-wai", "director_ch": "王家衛", "actors": []string{"Tony Leung", "Faye Wong"}},
		{"id": int64(2), "title_en": "Seven", "title_ch": "", "director_en": "David Fincher", "director_ch": "", "actors": []string{"Brad Pitt", "Morgan Freeman"}},
		{"id": int64(3), "title_en": "In the Mood for Love", "title_ch": "花樣年華", "director_en": "Wong Kar-wai", "director_ch": "王家衛", "actors": []string{"Tony Leung", "Maggie Cheung"}},
	}
}

func TestParseSearchQuery(t *testing.T) {
	t.Run("bare terms go to the default group", func(t *testing.T) {
		tokens := ParseSearchQuery("mood love")
		require.Len(t, tokens, 2)
		assert.Equal(t, DefaultSearchGroup, tokens[0].group)
		assert.Equal(t, []string{"mood"}, tokens[0].values)
	})

	t.Run("qualified term", func(t *testing.T) {
		tokens := ParseSearchQuery("director:wong")
		require.Len(t, tokens, 1)
		assert.Equal(t, "director", tokens[0].group)
		assert.Equal(t, []string{"wong"}, tokens[0].values)
	})

	t.Run("parenthesized value list", func(t *testing.T) {
		tokens := ParseSearchQuery("actor:(leung cheung)")
		require.Len(t, tokens, 1)
		assert.Equal(t, []string{"leung", "cheung"}, tokens[0].values)
	})

	t.Run("unterminated group reads as a value list", func(t *testing.T) {
		tokens := ParseSearchQuery("tag:(drama noir")
		require.Len(t, tokens, 1)
		assert.Equal(t, "tag", tokens[0].group)
		assert.Equal(t, []string{"drama", "noir"}, tokens[0].values)
	})

	t.Run("duplicate terms collapse", func(t *testing.T) {
		tokens := ParseSearchQuery("wong wong director:wong")
		assert.Len(t, tokens, 2)
	})
}

func TestApplySearch(t *testing.T) {
	desc := searchDescriptor()
	records := searchRecords()

	t.Run("single token matches any default field", func(t *testing.T) {
		out := ApplySearch(records, desc, "wong")
		require.Len(t, out, 2)
	})

	t.Run("tokens are conjunctive", func(t *testing.T) {
		out := ApplySearch(records, desc, "wong mood")
		require.Len(t, out, 1)
		assert.Equal(t, int64(3), out[0]["id"])
	})

	t.Run("case folded matching", func(t *testing.T) {
		out := ApplySearch(records, desc, "SEVEN")
		require.Len(t, out, 1)
		assert.Equal(t, int64(2), out[0]["id"])
	})

	t.Run("chinese title substring", func(t *testing.T) {
		out := ApplySearch(records, desc, "森林")
		require.Len(t, out, 1)
		assert.Equal(t, int64(1), out[0]["id"])
	})

	t.Run("qualified group scans only its fields", func(t *testing.T) {
		// "leung" appears under actors but never in a director field.
		assert.Empty(t, ApplySearch(records, desc, "director:leung"))
		assert.Len(t, ApplySearch(records, desc, "actor:leung"), 2)
	})

	t.Run("value list is disjunctive within a token", func(t *testing.T) {
		out := ApplySearch(records, desc, "actor:(pitt cheung)")
		require.Len(t, out, 2)
	})

	t.Run("unknown group is ignored", func(t *testing.T) {
		out := ApplySearch(records, desc, "studio:shaw")
		assert.Len(t, out, len(records))
	})

	t.Run("empty query leaves records untouched", func(t *testing.T) {
		out := ApplySearch(records, desc, "   ")
		assert.Len(t, out, len(records))
	})
}
