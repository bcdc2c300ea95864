package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
	"github.com/Leganyst/salon-core/internal/service"
)

type Appointments interface {
	Create(ctx context.Context, actor service.Actor, in service.CreateAppointmentInput) (*model.Appointment, error)
	Update(ctx context.Context, actor service.Actor, id int64, in service.UpdateAppointmentInput) (*model.Appointment, error)
	Delete(ctx context.Context, actor service.Actor, id int64) error
	Get(ctx context.Context, actor service.Actor, id int64) (*model.Appointment, error)
	List(ctx context.Context, actor service.Actor, in service.ListAppointmentsInput) (pagination.Page[model.Appointment], error)
	ListMine(ctx context.Context, actor service.Actor, in service.ListAppointmentsInput) (pagination.Page[model.Appointment], error)
	ListAssigned(ctx context.Context, actor service.Actor, in service.ListAppointmentsInput) (pagination.Page[model.Appointment], error)
}

type createAppointmentRequest struct {
	CustomerID     int64   `json:"customer_id"`
	ServiceIDs     []int64 `json:"service_ids" binding:"required"`
	TechnicianID   *int64  `json:"technician_id"`
	ReceptionistID *int64  `json:"receptionist_id"`
	StartTime      string  `json:"start_time" binding:"required"`
	EndTime        *string `json:"end_time"`
	Status         *string `json:"status"`
	Notes          string  `json:"notes"`
	Surcharge      int64   `json:"surcharge"`
	Promotion      int64   `json:"promotion"`
}

type updateAppointmentRequest struct {
	ServiceIDs     []int64 `json:"service_ids"`
	TechnicianID   *int64  `json:"technician_id"`
	ReceptionistID *int64  `json:"receptionist_id"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
	Surcharge      *int64  `json:"surcharge"`
	Promotion      *int64  `json:"promotion"`
}

type appointmentHandler struct {
	svc Appointments
	loc *time.Location
	log logrus.FieldLogger
}

func (h *appointmentHandler) create(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apperror.Validation("invalid request body: %v", err))
		return
	}

	a, err := h.svc.Create(c.Request.Context(), actorFrom(c), service.CreateAppointmentInput{
		CustomerID:     req.CustomerID,
		ServiceIDs:     req.ServiceIDs,
		TechnicianID:   req.TechnicianID,
		ReceptionistID: req.ReceptionistID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         req.Status,
		Notes:          req.Notes,
		Surcharge:      req.Surcharge,
		Promotion:      req.Promotion,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusCreated, "appointment created", a)
}

func (h *appointmentHandler) update(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apperror.Validation("invalid request body: %v", err))
		return
	}

	a, err := h.svc.Update(c.Request.Context(), actorFrom(c), id, service.UpdateAppointmentInput{
		ServiceIDs:     req.ServiceIDs,
		TechnicianID:   req.TechnicianID,
		ReceptionistID: req.ReceptionistID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         req.Status,
		Notes:          req.Notes,
		Surcharge:      req.Surcharge,
		Promotion:      req.Promotion,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "appointment updated", a)
}

func (h *appointmentHandler) delete(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "appointment deleted", nil)
}

func (h *appointmentHandler) get(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondJSON(c, http.StatusOK, "appointment", a)
}

type listFunc func(context.Context, service.Actor, service.ListAppointmentsInput) (pagination.Page[model.Appointment], error)

func (h *appointmentHandler) list(fn listFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := h.listInput(c)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		page, err := fn(c.Request.Context(), actorFrom(c), in)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		RespondPage(c, "appointments", page)
	}
}

func (h *appointmentHandler) listInput(c *gin.Context) (service.ListAppointmentsInput, error) {
	var in service.ListAppointmentsInput
	var err error

	if in.Limit, in.Offset, err = limitOffset(c); err != nil {
		return in, err
	}

	in.OrderBy = c.Query("order_by")
	switch strings.ToLower(c.DefaultQuery("direction", "desc")) {
	case "asc":
	case "desc":
		in.Desc = true
	default:
		return in, apperror.Validation("direction must be asc or desc")
	}

	if raw := c.Query("status"); raw != "" {
		st, ok := model.ParseAppointmentStatus(raw)
		if !ok {
			return in, apperror.Validation("unknown status %q", raw)
		}
		in.Filter.Status = &st
	}

	ids := []struct {
		key string
		dst **int64
	}{
		{"customer_id", &in.Filter.CustomerID},
		{"receptionist_id", &in.Filter.ReceptionistID},
		{"technician_id", &in.Filter.TechnicianID},
	}
	for _, f := range ids {
		if raw := c.Query(f.key); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return in, apperror.Validation("%s must be an integer", f.key)
			}
			*f.dst = &v
		}
	}

	times := []struct {
		key string
		dst **time.Time
	}{
		{"start_from", &in.Filter.StartFrom},
		{"end_to", &in.Filter.EndTo},
	}
	for _, f := range times {
		if raw := c.Query(f.key); raw != "" {
			t, err := service.ParseTime(raw, h.loc)
			if err != nil {
				return in, err
			}
			*f.dst = &t
		}
	}
	return in, nil
}
