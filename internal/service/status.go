package service

import (
	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
)

var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPending:    {model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled},
	model.AppointmentStatusConfirmed:  {model.AppointmentStatusInProgress, model.AppointmentStatusCancelled, model.AppointmentStatusPayment},
	model.AppointmentStatusInProgress: {model.AppointmentStatusCompleted},
	model.AppointmentStatusCompleted:  {model.AppointmentStatusPayment},
	model.AppointmentStatusPayment:    nil,
	model.AppointmentStatusCancelled:  nil,
}

// CanTransition reports whether an appointment may move from one status to another.
// Re-setting the current status is allowed.
func CanTransition(from, to model.AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(s model.AppointmentStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// initialStatus resolves the requested starting status of a new appointment.
func initialStatus(requested *string, role model.Role) (model.AppointmentStatus, error) {
	if requested == nil || *requested == "" {
		return model.AppointmentStatusPending, nil
	}
	st, ok := model.ParseAppointmentStatus(*requested)
	if !ok {
		return "", apperror.Validation("unknown status %q", *requested)
	}
	switch st {
	case model.AppointmentStatusPending:
		return st, nil
	case model.AppointmentStatusConfirmed:
		if role.IsStaff() {
			return st, nil
		}
		return "", apperror.Forbidden("only staff may create a confirmed appointment")
	}
	return "", apperror.Validation("appointment cannot start as %s", st)
}

func checkTransition(from, to model.AppointmentStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return apperror.Validation("invalid status transition from %s to %s", from, to)
}
