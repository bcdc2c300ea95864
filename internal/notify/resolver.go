package notify

import (
	"context"

	"github.com/Leganyst/salon-core/internal/model"
)

// TokenSource is the token directory as seen by the resolver.
type TokenSource interface {
	TokensByUser(ctx context.Context, userID int64) ([]string, error)
	TokensByRoles(ctx context.Context, roles []model.Role) ([]string, error)
	AllTokens(ctx context.Context) ([]string, error)
}

// Audience is a resolved addressee: one user, or a receiver class for broadcasts.
type Audience struct {
	Receiver model.Receiver
	UserID   int64 // for non-broadcast receivers
}

// Resolver turns an audience into device tokens, reading role membership at call time.
type Resolver struct {
	tokens TokenSource
}

func NewResolver(tokens TokenSource) *Resolver {
	return &Resolver{tokens: tokens}
}

// Resolve returns the de-duplicated tokens of the audience. An empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, aud Audience) ([]string, error) {
	var (
		tokens []string
		err    error
	)
	switch {
	case aud.Receiver == model.ReceiverAll:
		tokens, err = r.tokens.AllTokens(ctx)
	case aud.Receiver.IsBroadcast():
		tokens, err = r.tokens.TokensByRoles(ctx, model.AudienceRoles(aud.Receiver))
	default:
		if aud.UserID <= 0 {
			return []string{}, nil
		}
		tokens, err = r.tokens.TokensByUser(ctx, aud.UserID)
	}
	if err != nil {
		return nil, err
	}
	return dedupe(tokens), nil
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
