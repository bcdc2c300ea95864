package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
)

// ServiceCatalog is the read side of bookable services and their current prices.
type ServiceCatalog interface {
	WithTx(tx *gorm.DB) ServiceCatalog
	List(ctx context.Context, onlyActive bool, opts pagination.Options) ([]model.ServiceItem, int64, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.ServiceItem, error)
}

type GormServiceCatalog struct {
	db *gorm.DB
}

func NewGormServiceCatalog(db *gorm.DB) *GormServiceCatalog {
	return &GormServiceCatalog{db: db}
}

func (r *GormServiceCatalog) WithTx(tx *gorm.DB) ServiceCatalog {
	return &GormServiceCatalog{db: tx}
}

func (r *GormServiceCatalog) List(ctx context.Context, onlyActive bool, opts pagination.Options) ([]model.ServiceItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ServiceItem{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count services", "service", err)
	}

	var services []model.ServiceItem
	if err := q.Order("name ASC").Order("id ASC").Limit(opts.Limit).Offset(opts.Offset).Find(&services).Error; err != nil {
		return nil, 0, translate("list services", "service", err)
	}
	return services, total, nil
}

// ListByIDs returns the rows that exist; callers detect missing ids themselves.
func (r *GormServiceCatalog) ListByIDs(ctx context.Context, ids []int64) ([]model.ServiceItem, error) {
	if len(ids) == 0 {
		return []model.ServiceItem{}, nil
	}
	var services []model.ServiceItem
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&services).Error
	if err != nil {
		return nil, translate("list services by ids", "service", err)
	}
	return services, nil
}
