package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
)

// TokenDirectory stores push delivery tokens and resolves them by audience.
type TokenDirectory interface {
	Register(ctx context.Context, userID int64, platform, token string) (*model.NotificationToken, error)
	Delete(ctx context.Context, userID, id int64) error
	TokensByUser(ctx context.Context, userID int64) ([]string, error)
	// Tokens of active accounts holding any of roles.
	TokensByRoles(ctx context.Context, roles []model.Role) ([]string, error)
	AllTokens(ctx context.Context) ([]string, error)
}

type GormTokenDirectory struct {
	db *gorm.DB
}

func NewGormTokenDirectory(db *gorm.DB) *GormTokenDirectory {
	return &GormTokenDirectory{db: db}
}

// Register is idempotent on (user, platform, token).
func (r *GormTokenDirectory) Register(ctx context.Context, userID int64, platform, token string) (*model.NotificationToken, error) {
	key := model.NotificationToken{UserID: userID, Platform: platform, Token: token}

	var t model.NotificationToken
	err := r.db.WithContext(ctx).Where(&key).FirstOrCreate(&t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent register of the same token
		err = r.db.WithContext(ctx).Where(&key).First(&t).Error
	}
	if err != nil {
		return nil, translate("register notification token", "user", err)
	}
	return &t, nil
}

func (r *GormTokenDirectory) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.NotificationToken{})
	if res.Error != nil {
		return translate("delete notification token", "notification token", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("notification token")
	}
	return nil
}

func (r *GormTokenDirectory) TokensByUser(ctx context.Context, userID int64) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&model.NotificationToken{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, translate("tokens by user", "notification token", err)
	}
	return tokens, nil
}

func (r *GormTokenDirectory) TokensByRoles(ctx context.Context, roles []model.Role) ([]string, error) {
	if len(roles) == 0 {
		return []string{}, nil
	}
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&model.NotificationToken{}).
		Joins("JOIN users ON users.id = notification_tokens.user_id").
		Where("users.role IN ?", roles).
		Where("users.is_active = ?", true).
		Order("notification_tokens.id ASC").
		Pluck("notification_tokens.token", &tokens).Error
	if err != nil {
		return nil, translate("tokens by role", "notification token", err)
	}
	return tokens, nil
}

func (r *GormTokenDirectory) AllTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&model.NotificationToken{}).
		Order("id ASC").
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, translate("all tokens", "notification token", err)
	}
	return tokens, nil
}
