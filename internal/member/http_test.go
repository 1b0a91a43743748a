// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package member

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/ctxutil"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
)

func registryRequest(t *testing.T, target string, claims *sec.SessionClaims) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		r = r.WithContext(ctxutil.WithMember(r.Context(), claims))
	}
	return r
}

func TestRegistryListing(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t, nil)
	auditStore := audit.NewMemoryStore()
	handler := NewHandler(engine, audit.NewDirtyFeed(auditStore), store).Routes()

	require.NoError(t, store.Insert(ctx, &Member{
		ID: 1, ITSC: "chanwk", FullName: "Chan Wing Kei", MemberType: TypeFull}))

	t.Run("guest is refused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, registryRequest(t, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("plain member is refused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		claims := &sec.SessionClaims{MemberID: 1, ITSC: "chanwk"}
		handler.ServeHTTP(rec, registryRequest(t, "/", claims))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin walks the registry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		claims := &sec.SessionClaims{MemberID: 9, ITSC: "exco", Admin: true}
		handler.ServeHTTP(rec, registryRequest(t, "/", claims))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Errno   int              `json:"errno"`
			Objects []map[string]any `json:"objects"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Errno)
		require.Len(t, body.Objects, 1)
		assert.Equal(t, "chanwk", body.Objects[0]["itsc"])
	})
}
