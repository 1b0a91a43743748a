// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package audit implements the append-only event log every mutation
// writes.
//
// The log is three things at once:
//
//  1. the audit trail an exco reads when something looks wrong,
//  2. the only store of historical counts — rating votes and
//     borrow/renew history are derived from entries, never kept as
//     counter columns, and
//  3. the substrate of the dirty feed (see [DirtyFeed]), the polling
//     mechanism read-mostly clients use to learn "this id changed".
//
// Entries are immutable once written. The single exception is removal
// of an entity's related entries when the entity itself is hard
// deleted, which keeps the feed from advertising ids that no longer
// resolve.
package audit

import (
	"context"
	"strings"
	"time"
)

// Actions recorded in the log. The generic three come from the resource
// engine; the rest are written by domain state machines.
const (
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionReserve = "reserve"
	ActionBorrow  = "borrow"
	ActionRate    = "rate"
	ActionVote    = "vote"
	ActionApply   = "apply"
	ActionSignin  = "signin"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"model"`
	Action     string    `json:"log_type"`
	EntityID   int64     `json:"model_refer"`
	// AffectedUser is the ITSC of the member the action concerns, if any.
	AffectedUser *string `json:"user_affected"`
	// ActingAdmin is the ITSC of the exco admin who performed the
	// action, if it was performed by an admin.
	ActingAdmin *string   `json:"admin_involved"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category returns the leading verb of the entry content, lowercased.
//
// State machines write content with a fixed leading verb ("borrow",
// "renew", "return", "up", "down", ...) so history predicates match on
// (action, category) instead of searching free text.
func (e *Entry) Category() string {
	content := strings.TrimSpace(e.Content)
	if i := strings.IndexByte(content, ' '); i >= 0 {
		content = content[:i]
	}
	return strings.ToLower(content)
}

// Fields returns the wire representation of the entry for the resource
// serializer.
func (e *Entry) Fields() map[string]any {
	return map[string]any{
		"id":             e.ID,
		"model":          e.EntityType,
		"log_type":       e.Action,
		"model_refer":    e.EntityID,
		"user_affected":  e.AffectedUser,
		"admin_involved": e.ActingAdmin,
		"content":        e.Content,
		"created_at":     e.CreatedAt,
	}
}

// Filter narrows a log listing. Zero values mean "any".
type Filter struct {
	EntityType   string
	Action       string
	EntityID     int64
	AffectedUser string
}

// Store is the persistence contract for the log.
//
// Append never blocks on anything but the underlying store; History is
// always newest-first.
type Store interface {
	// Append persists a new entry, filling in ID and CreatedAt.
	Append(ctx context.Context, entry *Entry) error

	// History returns entries for one entity, newest first. An empty
	// action matches all actions.
	History(ctx context.Context, entityType string, entityID int64, action string) ([]*Entry, error)

	// List returns a filtered page of the whole log, newest first,
	// along with the total match count.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, int, error)

	// ChangedSince returns the distinct entity ids of one entity type
	// with at least one entry in the given actions strictly after the
	// since instant.
	ChangedSince(ctx context.Context, entityType string, actions []string, since time.Time) ([]int64, error)

	// DeleteForEntity removes all entries referring to one entity.
	// Only the resource engine's hard-delete path may call this.
	DeleteForEntity(ctx context.Context, entityType string, entityID int64) error
}
