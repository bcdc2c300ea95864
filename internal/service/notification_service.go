package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
	"github.com/Leganyst/salon-core/internal/repository"
)

type ListNotificationsInput struct {
	IsRead *bool
	Type   string
	Limit  int
	Offset int
}

// NotificationService is the in-app notification history of the acting user.
type NotificationService struct {
	notifications repository.NotificationRepository
	log           logrus.FieldLogger
}

func NewNotificationService(notifications repository.NotificationRepository, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{notifications: notifications, log: log}
}

func recipientOf(actor Actor) repository.Recipient {
	return repository.Recipient{UserID: actor.ID, Role: actor.Role}
}

func (s *NotificationService) List(ctx context.Context, actor Actor, in ListNotificationsInput) (pagination.Page[model.Notification], error) {
	opts := pagination.Normalize(in.Limit, in.Offset)
	f := repository.NotificationFilter{IsRead: in.IsRead, Type: strings.ToUpper(strings.TrimSpace(in.Type))}

	items, total, err := s.notifications.ListForUser(ctx, recipientOf(actor), f, opts)
	if err != nil {
		s.logInternal("list notifications", err)
		return pagination.Page[model.Notification]{}, err
	}
	return pagination.NewPage(items, total, opts), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	n, err := s.notifications.UnreadCount(ctx, recipientOf(actor))
	if err != nil {
		s.logInternal("unread count", err)
		return 0, err
	}
	return n, nil
}

// MarkRead marks a notification the actor can see as read. Broadcast rows are
// shared, so one member of the role marks it read for the whole role.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id int64) (*model.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		s.logInternal("get notification", err)
		return nil, err
	}
	if !visible(actor, n) {
		return nil, apperror.NotFound("notification")
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		s.logInternal("mark notification read", err)
		return nil, err
	}
	n.IsRead = true
	return n, nil
}

// Delete removes a notification. Staff only.
func (s *NotificationService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.Role.IsStaff() {
		return apperror.Forbidden("only staff can delete notifications")
	}
	if err := s.notifications.Delete(ctx, id); err != nil {
		s.logInternal("delete notification", err)
		return err
	}
	return nil
}

func visible(actor Actor, n *model.Notification) bool {
	if n.UserID != nil {
		return *n.UserID == actor.ID
	}
	if n.Receiver == model.ReceiverAll {
		return true
	}
	rc, ok := model.BroadcastReceiverFor(actor.Role)
	return ok && rc == n.Receiver
}

func (s *NotificationService) logInternal(op string, err error) {
	if apperror.KindOf(err) == apperror.KindInternal {
		s.log.WithError(err).WithField("op", op).Error("notification operation failed")
	}
}
