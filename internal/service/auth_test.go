package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dropanchorapp/anchorpds/client"
	"github.com/dropanchorapp/anchorpds/internal/config"
	"github.com/dropanchorapp/anchorpds/internal/domain"
)

// fakeResolver scripts per-host responses and counts upstream calls.
type fakeResolver struct {
	sessions map[string]*client.Session // host -> session for a valid token
	broken   map[string]bool            // host -> transport failure
	calls    int
}

func (f *fakeResolver) GetSession(ctx context.Context, host, token string) (*client.Session, error) {
	f.calls++
	if f.broken[host] {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}
	session, ok := f.sessions[host]
	if !ok || token != "good-token" {
		return nil, client.ErrSessionRejected
	}
	return session, nil
}

func newTestService(resolver *fakeResolver, providers []string) *IdentityService {
	return NewIdentityService(config.Auth{
		Providers:       providers,
		TimeoutSeconds:  1,
		CacheTTLMinutes: 60,
	}, resolver)
}

func TestResolveFirstHostWins(t *testing.T) {
	resolver := &fakeResolver{
		sessions: map[string]*client.Session{
			"https://first.example":  {Did: "did:plc:first", Handle: "alice.first"},
			"https://second.example": {Did: "did:plc:second", Handle: "alice.second"},
		},
	}
	s := newTestService(resolver, []string{"https://first.example", "https://second.example"})

	identity, err := s.Resolve(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if identity.DID != "did:plc:first" {
		t.Fatalf("first host must be authoritative, got %s", identity.DID)
	}
	if identity.Handle == nil || *identity.Handle != "alice.first" {
		t.Fatalf("handle mangled: %+v", identity)
	}
	if resolver.calls != 1 {
		t.Fatalf("resolution must stop at first success, made %d calls", resolver.calls)
	}
}

func TestResolveFallsThroughOnTransportFailure(t *testing.T) {
	resolver := &fakeResolver{
		sessions: map[string]*client.Session{
			"https://second.example": {Did: "did:plc:alice"},
		},
		broken: map[string]bool{"https://first.example": true},
	}
	s := newTestService(resolver, []string{"https://first.example", "https://second.example"})

	identity, err := s.Resolve(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if identity.DID != "did:plc:alice" {
		t.Fatalf("expected fallback host to resolve, got %s", identity.DID)
	}
	if identity.Handle != nil {
		t.Fatalf("missing handle must stay absent")
	}
}

func TestResolveCachesSuccess(t *testing.T) {
	resolver := &fakeResolver{
		sessions: map[string]*client.Session{
			"https://pds.example": {Did: "did:plc:alice"},
		},
	}
	s := newTestService(resolver, []string{"https://pds.example"})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Resolve(ctx, "good-token"); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
	}

	if resolver.calls != 1 {
		t.Fatalf("cached token must not hit the provider again, made %d calls", resolver.calls)
	}
}

func TestResolveExpiredEntryRevalidates(t *testing.T) {
	resolver := &fakeResolver{
		sessions: map[string]*client.Session{
			"https://pds.example": {Did: "did:plc:alice"},
		},
	}
	s := newTestService(resolver, []string{"https://pds.example"})

	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := s.Resolve(ctx, "good-token"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	now = now.Add(61 * time.Minute)

	if _, err := s.Resolve(ctx, "good-token"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolver.calls != 2 {
		t.Fatalf("expired entry must be re-validated, made %d calls", resolver.calls)
	}
}

func TestResolveDoesNotCacheFailure(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*client.Session{}}
	s := newTestService(resolver, []string{"https://pds.example"})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := s.Resolve(ctx, "bad-token")
		if err == nil {
			t.Fatalf("expected unauthenticated")
		}
		if _, ok := err.(domain.AuthenticationError); !ok {
			t.Fatalf("expected AuthenticationError, got %T", err)
		}
	}

	if resolver.calls != 2 {
		t.Fatalf("failures must be retried, made %d calls", resolver.calls)
	}

	// The token becoming valid later succeeds without waiting anything out.
	resolver.sessions["https://pds.example"] = &client.Session{Did: "did:plc:alice"}
	identity, err := s.Resolve(ctx, "good-token")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if identity.DID != "did:plc:alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestResolveEmptyToken(t *testing.T) {
	s := newTestService(&fakeResolver{}, []string{"https://pds.example"})

	_, err := s.Resolve(context.Background(), "")
	if _, ok := err.(domain.AuthenticationError); !ok {
		t.Fatalf("expected AuthenticationError, got %T (%v)", err, err)
	}
}
