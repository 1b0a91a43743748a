// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegister(t *testing.T) {
	t.Run("valid descriptor", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(&Descriptor{
			Name:       "disk",
			Fields:     []string{"id", "title_en", "avail_type"},
			ReadOnly:   []string{"avail_type"},
			ListFields: []string{"id", "title_en"},
		})
		require.NoError(t, err)
		assert.NotNil(t, r.Get("disk"))
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&Descriptor{Name: "news"}))
		assert.Error(t, r.Register(&Descriptor{Name: "news"}))
	})

	t.Run("rejects list field outside field set", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(&Descriptor{
			Name:       "news",
			Fields:     []string{"id", "title"},
			ListFields: []string{"body"},
		})
		assert.Error(t, err)
	})

	t.Run("rejects search group over excluded field", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(&Descriptor{
			Name:    "member",
			Exclude: []string{"university_id"},
			SearchGroups: map[string][]string{
				DefaultSearchGroup: {"university_id"},
			},
		})
		assert.Error(t, err)
	})

	t.Run("rejects nesting cycles", func(t *testing.T) {
		member := &Descriptor{Name: "member"}
		disk := &Descriptor{
			Name:   "disk",
			Nested: map[string]*Descriptor{"hold_by": member},
		}
		// A member descriptor that projects its reserved disk back in
		// full would recurse forever.
		member.Nested = map[string]*Descriptor{"reserved": disk}

		r := NewRegistry()
		assert.Error(t, r.Register(disk))
	})

	t.Run("accepts diamond nesting without a cycle", func(t *testing.T) {
		user := &Descriptor{Name: "member_summary", Fields: []string{"id", "itsc"}}
		d := &Descriptor{
			Name: "disk",
			Nested: map[string]*Descriptor{
				"hold_by":     user,
				"reserved_by": user,
			},
		}
		r := NewRegistry()
		assert.NoError(t, r.Register(d))
	})
}

func TestProjection(t *testing.T) {
	summary := &Descriptor{Name: "member_summary", Fields: []string{"id", "itsc", "full_name"}}
	desc := &Descriptor{
		Name:       "disk",
		Exclude:    []string{"create_log"},
		ListFields: []string{"id", "title_en", "hold_by"},
		Nested:     map[string]*Descriptor{"hold_by": summary},
	}

	rec := Record{
		"id":         int64(7),
		"title_en":   "Seven",
		"desc_en":    "Two detectives hunt a serial killer.",
		"create_log": int64(99),
		"hold_by": Record{
			"id":            int64(3),
			"itsc":          "chanwk",
			"full_name":     "Chan Wing Kei",
			"university_id": "200312345",
		},
	}

	t.Run("full projection", func(t *testing.T) {
		out := Project(rec, desc)
		assert.NotContains(t, out, "create_log")
		assert.Contains(t, out, "desc_en")

		nested, ok := out["hold_by"].(Record)
		require.True(t, ok)
		assert.NotContains(t, nested, "university_id")
		assert.Equal(t, "chanwk", nested["itsc"])
	})

	t.Run("list projection narrows to list fields", func(t *testing.T) {
		out := ProjectList(rec, desc)
		assert.Contains(t, out, "title_en")
		assert.NotContains(t, out, "desc_en")

		// References still project in full under their own descriptor.
		nested, ok := out["hold_by"].(Record)
		require.True(t, ok)
		assert.Equal(t, "Chan Wing Kei", nested["full_name"])
	})

	t.Run("input record untouched", func(t *testing.T) {
		_ = Project(rec, desc)
		assert.Contains(t, rec, "create_log")
	})
}

func TestStripReadOnly(t *testing.T) {
	desc := &Descriptor{
		Name:     "disk",
		Fields:   []string{"id", "title_en", "avail_type", "hold_by"},
		ReadOnly: []string{"avail_type", "hold_by"},
	}
	payload := Record{"title_en": "Seven", "avail_type": "Borrowed", "hold_by": int64(3)}

	out := StripReadOnly(payload, desc)
	assert.Equal(t, Record{"title_en": "Seven"}, out)
	// The caller's payload stays intact.
	assert.Contains(t, payload, "avail_type")
}
