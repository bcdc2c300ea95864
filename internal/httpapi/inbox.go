package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
	"github.com/Leganyst/salon-core/internal/service"
)

type Notifications interface {
	List(ctx context.Context, actor service.Actor, in service.ListNotificationsInput) (pagination.Page[model.Notification], error)
	UnreadCount(ctx context.Context, actor service.Actor) (int64, error)
	MarkRead(ctx context.Context, actor service.Actor, id int64) (*model.Notification, error)
	Delete(ctx context.Context, actor service.Actor, id int64) error
}

type Tokens interface {
	Register(ctx context.Context, actor service.Actor, platform, token string) (*model.NotificationToken, error)
	Delete(ctx context.Context, actor service.Actor, id int64) error
}

type notificationHandler struct {
	svc Notifications
	log logrus.FieldLogger
}

func (h *notificationHandler) list(c *gin.Context) {
	limit, offset, err := limitOffset(c)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	in := service.ListNotificationsInput{Type: c.Query("type"), Limit: limit, Offset: offset}
	if raw := c.Query("is_read"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, h.log, apperror.Validation("is_read must be true or false"))
			return
		}
		in.IsRead = &v
	}

	page, err := h.svc.List(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondPage(c, "notifications", page)
}

func (h *notificationHandler) unreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "unread notifications", gin.H{"count": n})
}

func (h *notificationHandler) markRead(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	n, err := h.svc.MarkRead(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "notification marked as read", n)
}

func (h *notificationHandler) delete(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "notification deleted", nil)
}

type registerTokenRequest struct {
	Platform string `json:"platform" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

type tokenHandler struct {
	svc Tokens
	log logrus.FieldLogger
}

func (h *tokenHandler) register(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apperror.Validation("invalid request body: %v", err))
		return
	}
	t, err := h.svc.Register(c.Request.Context(), actorFrom(c), req.Platform, req.Token)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusCreated, "notification token registered", t)
}

func (h *tokenHandler) delete(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "notification token deleted", nil)
}

type Catalog interface {
	List(ctx context.Context, actor service.Actor, in service.ListServicesInput) (pagination.Page[model.ServiceItem], error)
}

type catalogHandler struct {
	svc Catalog
	log logrus.FieldLogger
}

func (h *catalogHandler) list(c *gin.Context) {
	limit, offset, err := limitOffset(c)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	in := service.ListServicesInput{Limit: limit, Offset: offset}
	if raw := c.Query("include_inactive"); raw != "" {
		if in.IncludeInactive, err = strconv.ParseBool(raw); err != nil {
			RespondError(c, h.log, apperror.Validation("include_inactive must be true or false"))
			return
		}
	}
	page, err := h.svc.List(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondPage(c, "services", page)
}
