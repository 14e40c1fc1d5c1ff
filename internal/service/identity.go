package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noryangjin/auction-server/internal/domain"
	"github.com/noryangjin/auction-server/internal/repository"
)

// IdentityResolver loads the stored account behind an authenticated caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity string) (*domain.User, error)
}

// IdentityCache stores account snapshots keyed by identity.
//
// Every identity has a generation that Delete advances. SetIfGeneration only stores the
// snapshot while the generation is still the one passed in, so a lookup that started before
// an invalidation cannot write its stale result back.
type IdentityCache interface {
	Get(ctx context.Context, identity string) (domain.UserSnapshot, bool, error)
	Generation(ctx context.Context, identity string) (int64, error)
	SetIfGeneration(ctx context.Context, identity string, snap domain.UserSnapshot, generation int64, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, identity string) error
}

// NormalizeIdentity returns the canonical form of a caller identity (an email address).
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// StoreIdentityResolver resolves identities by looking the account up in the store.
// Unknown identities are rejected; no account is ever made up from the identity string.
type StoreIdentityResolver struct {
	users repository.UserRepository
}

// NewStoreIdentityResolver builds the resolver.
func NewStoreIdentityResolver(users repository.UserRepository) *StoreIdentityResolver {
	return &StoreIdentityResolver{users: users}
}

// Resolve implements IdentityResolver.
func (r *StoreIdentityResolver) Resolve(ctx context.Context, identity string) (*domain.User, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return nil, domain.NewAuthorizationError("caller identity is missing")
	}
	user, err := r.users.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthorizationError("unknown account")
		}
		return nil, domain.NewStoreUnavailableError("resolve identity", err)
	}
	return user, nil
}

// CachedIdentityResolver is a read-through cache in front of another resolver.
// Cache failures are logged and the inner resolver is used instead. Cached snapshots never
// carry the stored credential.
type CachedIdentityResolver struct {
	inner  IdentityResolver
	cache  IdentityCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedIdentityResolver wraps inner. A nil cache or a non-positive ttl disables caching.
func NewCachedIdentityResolver(inner IdentityResolver, cache IdentityCache, ttl time.Duration, logger *zap.Logger) *CachedIdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedIdentityResolver{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedIdentityResolver) enabled() bool {
	return r.cache != nil && r.ttl > 0
}

// Resolve implements IdentityResolver.
func (r *CachedIdentityResolver) Resolve(ctx context.Context, identity string) (*domain.User, error) {
	identity = NormalizeIdentity(identity)
	if !r.enabled() || identity == "" {
		return r.inner.Resolve(ctx, identity)
	}

	snap, found, err := r.cache.Get(ctx, identity)
	switch {
	case err != nil:
		r.logger.Warn("identity cache read failed", zap.String("identity", identity), zap.Error(err))
	case found:
		return domain.RestoreUser(snap), nil
	}

	generation, err := r.cache.Generation(ctx, identity)
	if err != nil {
		r.logger.Warn("identity cache generation read failed", zap.String("identity", identity), zap.Error(err))
		return r.inner.Resolve(ctx, identity)
	}

	user, err := r.inner.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	snap = user.Snapshot()
	snap.Password = ""
	stored, err := r.cache.SetIfGeneration(ctx, identity, snap, generation, r.ttl)
	switch {
	case err != nil:
		r.logger.Warn("identity cache write failed", zap.String("identity", identity), zap.Error(err))
	case !stored:
		r.logger.Debug("identity invalidated during lookup; not cached", zap.String("identity", identity))
	}
	return user, nil
}

// Invalidate drops the cached account for identity and advances its generation.
func (r *CachedIdentityResolver) Invalidate(ctx context.Context, identity string) error {
	if !r.enabled() {
		return nil
	}
	return r.cache.Delete(ctx, NormalizeIdentity(identity))
}
