// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

/*
Package resource implements the declarative resource engine at the heart
of the backend.

A [Descriptor] describes an entity type once — its field set, read-only
fields, searchable groups, nested projections — and the generic
[Engine] turns that description into list/detail/search/create/edit/
delete behavior with audit logging, lifecycle hooks, and nested field
projection. Domain packages add their state machines on top through the
[LifecycleHooks] interface and extra sub-action routes.
*/
package resource

// RequestContext identifies the actor behind an engine call and the
// action being performed. It is passed explicitly through every engine
// and state-machine call; there is no package-level notion of a
// "current user".
type RequestContext struct {
	// ActorID is the member primary key, 0 for anonymous requests.
	ActorID int64
	// ActorITSC is the member handle, empty for anonymous requests.
	ActorITSC string
	// Admin reports whether the actor is an exco admin.
	Admin bool
	// Action is the engine operation being performed (create, edit,
	// delete, or a domain action such as reserve or vote).
	Action string
}

// Anonymous reports whether the request carries no authenticated member.
func (rc RequestContext) Anonymous() bool { return rc.ActorITSC == "" }

// AdminRef returns the acting admin's ITSC for audit attribution, or
// nil when the actor is not an admin.
func (rc RequestContext) AdminRef() *string {
	if !rc.Admin || rc.ActorITSC == "" {
		return nil
	}
	itsc := rc.ActorITSC
	return &itsc
}

// ActorRef returns the actor's ITSC, or nil for anonymous requests.
func (rc RequestContext) ActorRef() *string {
	if rc.ActorITSC == "" {
		return nil
	}
	itsc := rc.ActorITSC
	return &itsc
}

// WithAction returns a copy of the context tagged with a different
// action, used when one request fans out into secondary mutations.
func (rc RequestContext) WithAction(action string) RequestContext {
	rc.Action = action
	return rc
}
