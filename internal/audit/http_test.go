// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/ctxutil"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

func logRequest(t *testing.T, target string, claims *sec.SessionClaims) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		r = r.WithContext(ctxutil.WithMember(r.Context(), claims))
	}
	return r
}

func TestLogListing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Append(ctx, &Entry{
		EntityType: "disk", Action: ActionReserve, EntityID: 7,
		AffectedUser: pointer.To("chanwk"), Content: "reserve disk B7"}))
	require.NoError(t, store.Append(ctx, &Entry{
		EntityType: "member", Action: ActionEdit, EntityID: 1,
		ActingAdmin: pointer.To("exco"), Content: "edit member chanwk"}))
	handler := NewHandler(store).Routes()

	exco := &sec.SessionClaims{MemberID: 1, ITSC: "exco", Admin: true}

	t.Run("admin sees the trail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, logRequest(t, "/?model=disk", exco))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Errno   int              `json:"errno"`
			Objects []map[string]any `json:"objects"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Errno)
		require.Len(t, body.Objects, 1)
		assert.Equal(t, "reserve", body.Objects[0]["log_type"])
	})

	t.Run("member is refused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		member := &sec.SessionClaims{MemberID: 2, ITSC: "chanwk"}
		handler.ServeHTTP(rec, logRequest(t, "/", member))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("guest is refused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, logRequest(t, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad model_refer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, logRequest(t, "/?model_refer=abc", exco))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
