package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
)

const (
	DefaultTimeout  = 12 * time.Second
	DefaultInterval = 250 * time.Millisecond
	DefaultTTL      = 15 * time.Second
)

const memberCacheKey = "member"

// Member is the authenticated member as reported by the identity provider.
type Member struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Source looks up the current member. It may return (nil, nil) while the
// provider is still initializing.
type Source interface {
	CurrentMember(ctx context.Context) (*Member, error)
}

type SourceFunc func(ctx context.Context) (*Member, error)

func (f SourceFunc) CurrentMember(ctx context.Context) (*Member, error) { return f(ctx) }

// Static is a member id supplied by configuration.
type Static string

func (s Static) CurrentMember(ctx context.Context) (*Member, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return nil, nil
	}
	return &Member{ID: id}, nil
}

// TokenSource yields the member asserted by a signed member token.
type TokenSource struct {
	Secret string
	Token  string
}

func (s TokenSource) CurrentMember(ctx context.Context) (*Member, error) {
	if s.Token == "" {
		return nil, errors.New("identity: no member token")
	}
	claims, err := auth.ValidateMemberToken(s.Secret, s.Token)
	if err != nil {
		return nil, err
	}
	return &Member{ID: claims.MemberID}, nil
}

// Resolver polls a Source until it yields a member and caches the result
// briefly so every API call does not poll again.
type Resolver struct {
	source   Source
	interval time.Duration
	cache    *cache.Cache
}

func NewResolver(source Source) *Resolver {
	return &Resolver{
		source:   source,
		interval: DefaultInterval,
		cache:    cache.New(DefaultTTL, 0),
	}
}

// Resolve returns the current member, or nil when none could be obtained
// before timeout elapsed or ctx ended. A nil result means unauthenticated.
func (r *Resolver) Resolve(ctx context.Context, timeout time.Duration) *Member {
	if x, found := r.cache.Get(memberCacheKey); found {
		return x.(*Member)
	}
	if r.source == nil {
		return nil
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		member, err := r.source.CurrentMember(ctx)
		if err != nil {
			slog.Debug("identity: lookup failed", "error", err)
		} else if member != nil && member.ID != "" {
			r.cache.SetDefault(memberCacheKey, member)
			return member
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// Forget drops the cached member.
func (r *Resolver) Forget() {
	r.cache.Delete(memberCacheKey)
}
