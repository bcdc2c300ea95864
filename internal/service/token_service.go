package service

import (
	"context"
	"strings"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/repository"
)

var platforms = map[string]bool{"android": true, "ios": true, "web": true}

// TokenService registers and removes the acting user's push tokens.
type TokenService struct {
	tokens repository.TokenDirectory
}

func NewTokenService(tokens repository.TokenDirectory) *TokenService {
	return &TokenService{tokens: tokens}
}

func (s *TokenService) Register(ctx context.Context, actor Actor, platform, token string) (*model.NotificationToken, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	token = strings.TrimSpace(token)
	if !platforms[platform] {
		return nil, apperror.Validation("platform must be one of android, ios, web")
	}
	if token == "" {
		return nil, apperror.Validation("token is required")
	}
	return s.tokens.Register(ctx, actor.ID, platform, token)
}

func (s *TokenService) Delete(ctx context.Context, actor Actor, id int64) error {
	return s.tokens.Delete(ctx, actor.ID, id)
}
