// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"fmt"
	"sort"
)

// DefaultSearchGroup is the group qualified-search tokens fall into
// when a descriptor configures plain full-text search.
const DefaultSearchGroup = "default"

// Record is the wire-shaped view of an entity: field name to value,
// with nested entities embedded as further Records. Engines operate on
// Records for filtering, searching and projection; typed entities only
// exist inside stores and state machines.
type Record = map[string]any

// Descriptor declares how one entity type behaves under the generic
// engine. Zero-valued slices mean "no restriction": a nil Fields list
// projects every field the codec produces, a nil ListFields list makes
// list and detail projections identical.
type Descriptor struct {
	// Name is the entity type name used in audit entries, dirty-feed
	// lookups and registry keys (e.g. "disk", "member").
	Name string

	// Fields whitelists projected field names. Nil means all.
	Fields []string

	// Exclude blacklists field names from every projection. Applied
	// after Fields.
	Exclude []string

	// ReadOnly lists fields silently stripped from edit payloads.
	ReadOnly []string

	// ListFields narrows list projections to the intersection of
	// Fields and ListFields. Detail projections ignore it.
	ListFields []string

	// FilterFields lists the field paths that may appear in query
	// string filters. Paths into nested records use "__" separators.
	FilterFields []string

	// SearchGroups maps qualified-search group names to the fields
	// each group scans. The DefaultSearchGroup entry serves
	// unqualified tokens.
	SearchGroups map[string][]string

	// Nested maps field names holding embedded entities to the
	// descriptor governing their projection.
	Nested map[string]*Descriptor

	// DirtyActions lists the audit actions whose entries mark an
	// entity as recently changed for the dirty feed.
	DirtyActions []string

	// AdminOnlyFeed restricts the dirty feed to admins.
	AdminOnlyFeed bool

	// PurgeAuditOnDelete removes an entity's audit history when the
	// entity is deleted instead of keeping it as a tombstone trail.
	PurgeAuditOnDelete bool
}

// projects reports whether a field survives the Fields/Exclude rules.
func (d *Descriptor) projects(field string) bool {
	for _, ex := range d.Exclude {
		if ex == field {
			return false
		}
	}
	if d.Fields == nil {
		return true
	}
	for _, f := range d.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// listProjects reports whether a field survives list-mode projection.
func (d *Descriptor) listProjects(field string) bool {
	if !d.projects(field) {
		return false
	}
	if d.ListFields == nil {
		return true
	}
	for _, f := range d.ListFields {
		if f == field {
			return true
		}
	}
	return false
}

func (d *Descriptor) readOnly(field string) bool {
	for _, f := range d.ReadOnly {
		if f == field {
			return true
		}
	}
	return false
}

func (d *Descriptor) filterable(path string) bool {
	for _, f := range d.FilterFields {
		if f == path {
			return true
		}
	}
	return false
}

// Registry holds the descriptors of every entity type and validates
// them once at startup, so malformed declarations fail at boot instead
// of at request time.
type Registry struct {
	descriptors map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Register validates and adds a descriptor. It rejects duplicate
// names, list/read-only fields outside the field set, search groups
// over excluded fields, and nested chains that reach back to an
// ancestor descriptor (which would recurse forever at projection).
func (r *Registry) Register(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("resource: descriptor without a name")
	}
	if _, ok := r.descriptors[d.Name]; ok {
		return fmt.Errorf("resource: duplicate descriptor %q", d.Name)
	}
	if d.Fields != nil {
		for _, f := range d.ListFields {
			if !contains(d.Fields, f) {
				return fmt.Errorf("resource: %s: list field %q not in field set", d.Name, f)
			}
		}
		for _, f := range d.ReadOnly {
			if !contains(d.Fields, f) {
				return fmt.Errorf("resource: %s: read-only field %q not in field set", d.Name, f)
			}
		}
	}
	for group, fields := range d.SearchGroups {
		if len(fields) == 0 {
			return fmt.Errorf("resource: %s: empty search group %q", d.Name, group)
		}
		for _, f := range fields {
			if !d.projects(f) {
				return fmt.Errorf("resource: %s: search group %q scans hidden field %q", d.Name, group, f)
			}
		}
	}
	if err := checkNesting(d, nil); err != nil {
		return err
	}
	r.descriptors[d.Name] = d
	return nil
}

// MustRegister is Register for startup wiring, panicking on error.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns a registered descriptor, or nil.
func (r *Registry) Get(name string) *Descriptor {
	return r.descriptors[name]
}

// Names returns registered descriptor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkNesting walks nested descriptors and fails when a descriptor
// name reappears on its own ancestor chain.
func checkNesting(d *Descriptor, ancestors []string) error {
	for _, a := range ancestors {
		if a == d.Name {
			return fmt.Errorf("resource: nesting cycle through %q", d.Name)
		}
	}
	ancestors = append(ancestors, d.Name)
	for field, child := range d.Nested {
		if child == nil {
			return fmt.Errorf("resource: %s: nested field %q has no descriptor", d.Name, field)
		}
		if err := checkNesting(child, ancestors); err != nil {
			return err
		}
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
