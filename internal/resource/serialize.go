// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

// Project applies a descriptor's projection rules to a record: the
// Fields whitelist, the Exclude blacklist, and recursive projection of
// nested entity records under their own descriptors. The input record
// is not modified.
func Project(rec Record, desc *Descriptor) Record {
	return project(rec, desc, false)
}

// ProjectList is Project narrowed to the descriptor's list fields,
// used for collection responses where row summaries suffice.
func ProjectList(rec Record, desc *Descriptor) Record {
	return project(rec, desc, true)
}

func project(rec Record, desc *Descriptor, listMode bool) Record {
	out := make(Record, len(rec))
	for field, val := range rec {
		if listMode {
			if !desc.listProjects(field) {
				continue
			}
		} else if !desc.projects(field) {
			continue
		}
		if child, ok := desc.Nested[field]; ok && val != nil {
			switch nested := val.(type) {
			case Record:
				// Nested entities always project in full: the list
				// narrowing applies to the row, not its references.
				val = project(nested, child, false)
			case []Record:
				projected := make([]Record, len(nested))
				for i, item := range nested {
					projected[i] = project(item, child, false)
				}
				val = projected
			}
		}
		out[field] = val
	}
	return out
}

// StripReadOnly returns a copy of an edit payload without the
// descriptor's read-only fields. Clients routinely echo back whole
// objects, so unknown and immutable keys are dropped rather than
// rejected.
func StripReadOnly(payload Record, desc *Descriptor) Record {
	out := make(Record, len(payload))
	for field, val := range payload {
		if desc.readOnly(field) {
			continue
		}
		out[field] = val
	}
	return out
}
