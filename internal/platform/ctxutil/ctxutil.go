// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/ctxkey"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithMember returns a new context with the provided session claims attached.
func WithMember(ctx context.Context, member *sec.SessionClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyMember, member)
}

// GetMember retrieves the [*sec.SessionClaims] from the [context.Context].
// Returns nil for anonymous requests.
func GetMember(ctx context.Context) *sec.SessionClaims {
	claims, ok := ctx.Value(ctxkey.KeyMember).(*sec.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
