package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/dropanchorapp/anchorpds/client"
	"github.com/dropanchorapp/anchorpds/internal/config"
	"github.com/dropanchorapp/anchorpds/internal/domain"
)

var tracer = otel.Tracer("auth")

// SessionResolver asks one identity-provider host to validate a token.
// *client.Client is the production implementation.
type SessionResolver interface {
	GetSession(ctx context.Context, host, token string) (*client.Session, error)
}

type cacheEntry struct {
	identity  domain.Identity
	expiresAt time.Time
}

// IdentityService resolves bearer tokens against an ordered list of
// identity-provider hosts and memoizes successful results.
//
// Tokens are never decoded or verified locally; trust is delegated entirely
// to the provider's session endpoint.
type IdentityService struct {
	providers []string
	resolver  SessionResolver
	ttl       time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewIdentityService(conf config.Auth, resolver SessionResolver) *IdentityService {
	return &IdentityService{
		providers: conf.Providers,
		resolver:  resolver,
		ttl:       conf.CacheTTL(),
		now:       time.Now,
		entries:   make(map[string]cacheEntry),
	}
}

// Resolve returns the identity behind a bearer token. A non-expired cache
// entry is returned without any network call. On miss, provider hosts are
// tried in order and the first one that accepts the token is authoritative.
// Failures are not cached, so a token that becomes valid later is retried.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Resolve")
	defer span.End()

	if token == "" {
		return nil, domain.AuthenticationError{Reason: "missing bearer token"}
	}

	if identity, ok := s.cached(token); ok {
		return identity, nil
	}

	for _, host := range s.providers {
		session, err := s.resolver.GetSession(ctx, host, token)
		if err != nil {
			span.RecordError(errors.Wrapf(err, "getSession against %s failed", host))
			slog.DebugContext(ctx, "identity provider did not accept token",
				slog.String("host", host),
				slog.String("error", err.Error()),
				slog.String("module", "auth"),
			)
			continue
		}

		identity := domain.Identity{DID: session.Did}
		if session.Handle != "" {
			handle := session.Handle
			identity.Handle = &handle
		}

		s.store(token, identity)
		return &identity, nil
	}

	return nil, domain.AuthenticationError{Reason: "token not accepted by any identity provider"}
}

func (s *IdentityService) cached(token string) (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, token)
		return nil, false
	}

	identity := entry.identity
	return &identity, true
}

func (s *IdentityService) store(token string, identity domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Last writer wins; concurrent misses for the same token resolve to the
	// same identity.
	s.entries[token] = cacheEntry{
		identity:  identity,
		expiresAt: s.now().Add(s.ttl),
	}
}
