// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package sec provides session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (token signing and
// verification) from the domain logic. It is injected into the
// application layer via small interfaces so that tests can substitute
// a fixed-secret service.
//
// Identity itself comes from the university CAS server; this package
// only mints and checks the bearer tokens that represent an established
// CAS session.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload embedded inside a session token.
//
// The member id, ITSC, and admin flag travel inside the token so the
// middleware can reconstruct the acting member without a database query
// on every request. The session id (sid) is checked against Redis so
// logout revokes the token immediately.
type SessionClaims struct {
	jwt.RegisteredClaims

	SessionID string `json:"sid"`
	MemberID  int64  `json:"mid"`
	ITSC      string `json:"itsc"`
	Admin     bool   `json:"adm"`
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService from the shared session secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: session secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Sign creates a session token for a member.
func (service *TokenService) Sign(claims SessionClaims, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.ITSC,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a session token string.
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
