package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/salon-core/internal/model"
)

// Change classifies what happened to an appointment.
type Change string

const (
	ChangeCreated     Change = "created"
	ChangeStatus      Change = "status"
	ChangeReassigned  Change = "reassigned"
	ChangeRescheduled Change = "rescheduled"
)

// Snapshot is the post-mutation view of an appointment carried by an event.
type Snapshot struct {
	ID             int64
	CustomerID     int64
	CustomerName   string
	ReceptionistID *int64
	TechnicianID   *int64
	StartTime      time.Time
	Status         model.AppointmentStatus
}

// SnapshotOf copies the fields fan-out needs. Customer must be preloaded for the name.
func SnapshotOf(a *model.Appointment) Snapshot {
	s := Snapshot{
		ID:             a.ID,
		CustomerID:     a.CustomerID,
		ReceptionistID: a.ReceptionistID,
		TechnicianID:   a.TechnicianID,
		StartTime:      a.StartTime,
		Status:         a.Status,
	}
	if a.Customer != nil {
		s.CustomerName = a.Customer.FullName
	}
	return s
}

type Event struct {
	ID          uuid.UUID
	Change      Change
	ActorID     int64
	ActorRole   model.Role
	Appointment Snapshot

	// Set for updates.
	PrevStatus       model.AppointmentStatus
	PrevTechnicianID *int64
}

func NewCreatedEvent(actorID int64, role model.Role, snap Snapshot) Event {
	return Event{
		ID:          uuid.New(),
		Change:      ChangeCreated,
		ActorID:     actorID,
		ActorRole:   role,
		Appointment: snap,
	}
}

// NewUpdateEvent builds the event for an update, or reports false when the
// change is not one anybody is told about (notes, prices, receptionist).
func NewUpdateEvent(actorID int64, role model.Role, prev, next Snapshot) (Event, bool) {
	change, ok := Classify(prev, next)
	if !ok {
		return Event{}, false
	}
	return Event{
		ID:               uuid.New(),
		Change:           change,
		ActorID:          actorID,
		ActorRole:        role,
		Appointment:      next,
		PrevStatus:       prev.Status,
		PrevTechnicianID: prev.TechnicianID,
	}, true
}

// Classify picks the most important difference: status, then technician, then start time.
func Classify(prev, next Snapshot) (Change, bool) {
	switch {
	case prev.Status != next.Status:
		return ChangeStatus, true
	case !sameID(prev.TechnicianID, next.TechnicianID):
		return ChangeReassigned, true
	case !prev.StartTime.Equal(next.StartTime):
		return ChangeRescheduled, true
	}
	return "", false
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
