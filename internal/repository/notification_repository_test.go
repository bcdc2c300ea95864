package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
)

func TestNotificationRepository_Visibility(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)

	cust := seedUser(t, db, "Lan", model.RoleCustomer)
	rec := seedUser(t, db, "Thu", model.RoleReceptionist)
	tech := seedUser(t, db, "Minh", model.RoleTechnician)

	rows := []*model.Notification{
		{UserID: &cust.ID, Title: "own", Body: "b", Receiver: model.ReceiverUser, Type: model.NotificationTypeAppointment},
		{Title: "desk", Body: "b", Receiver: model.ReceiverAllReceptionist, Type: model.NotificationTypeAppointment,
			Data: datatypes.JSON(`{"appointment_id":1}`)},
		{Title: "floor", Body: "b", Receiver: model.ReceiverAllTechnician, Type: model.NotificationTypeAppointment},
		{Title: "everyone", Body: "b", Receiver: model.ReceiverAll, Type: "SYSTEM"},
	}
	for _, n := range rows {
		require.NoError(t, repo.Create(ctx, n))
	}

	titles := func(who Recipient, f NotificationFilter) []string {
		items, total, err := repo.ListForUser(ctx, who, f, pagination.Normalize(0, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(len(items)), total)
		out := make([]string, 0, len(items))
		for _, n := range items {
			out = append(out, n.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"own", "everyone"}, titles(Recipient{cust.ID, model.RoleCustomer}, NotificationFilter{}))
	assert.ElementsMatch(t, []string{"desk", "everyone"}, titles(Recipient{rec.ID, model.RoleReceptionist}, NotificationFilter{}))
	assert.ElementsMatch(t, []string{"desk", "everyone"}, titles(Recipient{99, model.RoleAdmin}, NotificationFilter{}))
	assert.ElementsMatch(t, []string{"floor"}, titles(Recipient{tech.ID, model.RoleTechnician}, NotificationFilter{Type: model.NotificationTypeAppointment}))

	unread, err := repo.UnreadCount(ctx, Recipient{rec.ID, model.RoleReceptionist})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, repo.MarkRead(ctx, rows[1].ID))
	unread, err = repo.UnreadCount(ctx, Recipient{rec.ID, model.RoleReceptionist})
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	read := true
	assert.Equal(t, []string{"desk"}, titles(Recipient{rec.ID, model.RoleReceptionist}, NotificationFilter{IsRead: &read}))

	got, err := repo.GetByID(ctx, rows[1].ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appointment_id":1}`, string(got.Data))
}

func TestNotificationRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewGormNotificationRepository(newTestDB(t))

	assert.ErrorIs(t, repo.MarkRead(ctx, 42), apperror.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 42), apperror.ErrNotFound)
	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
