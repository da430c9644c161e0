// Package client talks to ATProto identity providers over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 5 * time.Second

// ErrSessionRejected means the provider answered but did not accept the
// token. Transport errors are returned as-is so callers can tell the two
// apart.
var ErrSessionRejected = fmt.Errorf("session rejected by provider")

type Client struct {
	client    *http.Client
	userAgent string
}

// New builds a client with an explicit per-request timeout so that a slow
// provider host cannot suspend resolution indefinitely.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client:    &http.Client{Timeout: timeout},
		userAgent: "anchorpds",
	}
}

// Session is the provider's com.atproto.server.getSession response.
type Session struct {
	Did    string `json:"did"`
	Handle string `json:"handle"`
}

// GetSession asks one provider host whether it recognizes the bearer token.
func (c *Client) GetSession(ctx context.Context, host, token string) (*Session, error) {
	url := strings.TrimSuffix(host, "/") + "/xrpc/com.atproto.server.getSession"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrSessionRejected, "status %d from %s", resp.StatusCode, host)
	}

	var session Session
	err = json.NewDecoder(resp.Body).Decode(&session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode session")
	}
	if session.Did == "" {
		return nil, errors.Wrap(ErrSessionRejected, "session has no did")
	}

	return &session, nil
}
