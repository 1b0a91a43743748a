// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CASClient validates service tickets against the university CAS
// server using the CAS 1.0 plain-text protocol: the server answers
// "yes\n<account>\n" for a valid ticket and "no\n" otherwise.
type CASClient struct {
	serverURL string
	client    *http.Client
}

func NewCASClient(serverURL string) *CASClient {
	return &CASClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CASClient) ValidateTicket(ctx context.Context, ticket, serviceURL string) (string, error) {
	endpoint := c.serverURL + "/cas/validate?ticket=" + url.QueryEscape(ticket) +
		"&service=" + url.QueryEscape(serviceURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: CAS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("auth: CAS response unreadable: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) < 2 || lines[0] != "yes" {
		return "", fmt.Errorf("auth: CAS ticket rejected")
	}
	return strings.TrimSpace(lines[1]), nil
}
