// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package content holds the society's editorial resources: news
// posts, publications, documents, sponsors, one-sentence film quotes
// and uploaded file metadata. None of them carry domain state; they
// are thin declarations over the generic resource engine.
package content

import (
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

func stringInto(payload resource.Record, key string, dst *string) {
	if v, ok := payload[key].(string); ok {
		*dst = v
	}
}

func intInto(payload resource.Record, key string, dst *int) {
	switch v := payload[key].(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	}
}

func intField(payload resource.Record, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
