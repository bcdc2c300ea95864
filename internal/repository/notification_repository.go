package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
)

type NotificationFilter struct {
	IsRead *bool
	Type   string
}

// Recipient identifies whose notification history is being read.
// Role decides which broadcasts are visible.
type Recipient struct {
	UserID int64
	Role   model.Role
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id int64) (*model.Notification, error)
	ListForUser(ctx context.Context, who Recipient, f NotificationFilter, opts pagination.Options) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, who Recipient) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return translate("create notification", "notification", r.db.WithContext(ctx).Create(n).Error)
}

func (r *GormNotificationRepository) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translate("get notification", "notification", err)
	}
	return &n, nil
}

// visibleTo scopes a query to the user's own rows plus broadcasts to ALL or to the user's role.
func visibleTo(db *gorm.DB, who Recipient) *gorm.DB {
	receivers := []model.Receiver{model.ReceiverAll}
	if rc, ok := model.BroadcastReceiverFor(who.Role); ok {
		receivers = append(receivers, rc)
	}
	return db.Where(
		db.Session(&gorm.Session{NewDB: true}).
			Where("user_id = ?", who.UserID).
			Or("user_id IS NULL AND receiver IN ?", receivers),
	)
}

func (r *GormNotificationRepository) ListForUser(
	ctx context.Context,
	who Recipient,
	f NotificationFilter,
	opts pagination.Options,
) ([]model.Notification, int64, error) {
	var (
		items []model.Notification
		total int64
	)

	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), who)
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if f.Type != "" {
		q = q.Where("notification_type = ?", f.Type)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count notifications", "notification", err)
	}

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit).Offset(opts.Offset)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, 0, translate("list notifications", "notification", err)
	}
	return items, total, nil
}

func (r *GormNotificationRepository) UnreadCount(ctx context.Context, who Recipient) (int64, error) {
	var n int64
	err := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), who).
		Where("is_read = ?", false).
		Count(&n).Error
	if err != nil {
		return 0, translate("count unread notifications", "notification", err)
	}
	return n, nil
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return translate("mark notification read", "notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("notification")
	}
	return nil
}

func (r *GormNotificationRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete notification", "notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("notification")
	}
	return nil
}
