package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/salon-core/internal/model"
)

// AccountDirectory is a read-only view of accounts owned by the account subsystem.
type AccountDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	IsActive(ctx context.Context, id int64) (bool, error)
}

type GormAccountDirectory struct {
	db *gorm.DB
}

func NewGormAccountDirectory(db *gorm.DB) *GormAccountDirectory {
	return &GormAccountDirectory{db: db}
}

func (r *GormAccountDirectory) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate("get user", "user", err)
	}
	return &u, nil
}

func (r *GormAccountDirectory) IsActive(ctx context.Context, id int64) (bool, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsActive, nil
}
