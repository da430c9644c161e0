package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestGetSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/xrpc/com.atproto.server.getSession" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"did":    "did:plc:alice",
			"handle": "alice.example",
		})
	}))
	defer server.Close()

	c := New(time.Second)

	session, err := c.GetSession(context.Background(), server.URL, "tok")
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if session.Did != "did:plc:alice" || session.Handle != "alice.example" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestGetSessionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(time.Second)

	_, err := c.GetSession(context.Background(), server.URL, "bad")
	if !errors.Is(err, ErrSessionRejected) {
		t.Fatalf("expected ErrSessionRejected, got %v", err)
	}
}

func TestGetSessionTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately, so the dial fails

	c := New(time.Second)

	_, err := c.GetSession(context.Background(), server.URL, "tok")
	if err == nil {
		t.Fatalf("expected a transport error")
	}
	if errors.Is(err, ErrSessionRejected) {
		t.Fatalf("transport failure must be distinguishable from rejection")
	}
}

func TestGetSessionMissingDid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	c := New(time.Second)

	_, err := c.GetSession(context.Background(), server.URL, "tok")
	if !errors.Is(err, ErrSessionRejected) {
		t.Fatalf("a session without a did must be rejected, got %v", err)
	}
}
