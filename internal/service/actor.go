package service

import (
	"context"
	"errors"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
)

// Actor is the authenticated account performing an operation.
type Actor struct {
	ID   int64
	Role model.Role
}

// AccountLookup is the source of account data; a GORM repository in
// production, a fake in tests.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// ValidateActor:
//   - checks the identifier;
//   - loads the account;
//   - rejects inactive accounts;
//   - returns the role currently stored, not the one in the token.
func ValidateActor(ctx context.Context, accounts AccountLookup, userID int64) (Actor, error) {
	if userID <= 0 {
		return Actor{}, apperror.Unauthorized("invalid user id")
	}

	u, err := accounts.GetByID(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return Actor{}, apperror.Unauthorized("user not found")
	}
	if err != nil {
		return Actor{}, err
	}
	if !u.IsActive {
		return Actor{}, apperror.Forbidden("user is inactive")
	}

	return Actor{ID: u.ID, Role: u.Role}, nil
}
