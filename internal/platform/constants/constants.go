// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire
platform.

It defines default timeouts, rate limits, lending policy numbers, and
cross-cutting keys shared between layers.

Categories:

  - Server timing: read/write/idle timeouts for the HTTP server.
  - Rate limiting: burst capacities and IP tracking TTLs.
  - Lending policy: quotas, loan period, reservation expiry.
  - Sessions: token lifetime and Redis key taxonomy.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "filmsoc-api"
	AppVersion = "2.0.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Lending Policy

const (
	// ReserveQuota is the number of disks a member may hold reserved at once.
	ReserveQuota = 2

	// BorrowQuota is the number of disks a member may have on loan at once.
	BorrowQuota = 2

	// LoanPeriodDays is the loan period granted on check-out and renewal.
	LoanPeriodDays = 7

	// CounterReservationTTLDays is how long a counter reservation is held
	// before the remind job clears it automatically.
	CounterReservationTTLDays = 2

	// OverdueNoticeIntervalDays spaces out repeated overdue notices.
	OverdueNoticeIntervalDays = 3
)

// # Voting Policy

const (
	// VoteQuota is the number of votes a member may cast per film show.
	VoteQuota = 2

	// ShowSlots is the number of candidate film slots per show.
	ShowSlots = 3
)

// # Change Notification

const (
	// DirtyWindow is the trailing window the dirty feed reports over.
	// Clients polling at least this often never miss a change.
	DirtyWindow = 6 * time.Minute
)

// # Sessions

const (
	// SessionIssuer is the standard 'iss' claim in session tokens.
	SessionIssuer = "film.su.hkust.edu.hk"

	// SessionTTL is how long a CAS-backed session stays valid.
	SessionTTL = 14 * 24 * time.Hour

	// RedisPrefixSession keys active sessions in Redis.
	RedisPrefixSession = "auth:session:"

	// SessionCheckTimeout bounds the Redis liveness check performed on
	// every authenticated request.
	SessionCheckTimeout = 2 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)
