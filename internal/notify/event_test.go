package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/salon-core/internal/model"
)

func ptr(v int64) *int64 { return &v }

func TestClassify(t *testing.T) {
	start := time.Date(2030, 1, 2, 3, 0, 0, 0, time.UTC)
	base := Snapshot{ID: 1, CustomerID: 2, TechnicianID: ptr(5), StartTime: start, Status: model.AppointmentStatusPending}

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
		want   Change
		ok     bool
	}{
		{"nothing", func(*Snapshot) {}, "", false},
		{"notes only", func(s *Snapshot) { s.CustomerName = "renamed" }, "", false},
		{"receptionist only", func(s *Snapshot) { s.ReceptionistID = ptr(9) }, "", false},
		{"status", func(s *Snapshot) { s.Status = model.AppointmentStatusConfirmed }, ChangeStatus, true},
		{"technician", func(s *Snapshot) { s.TechnicianID = ptr(6) }, ChangeReassigned, true},
		{"technician cleared", func(s *Snapshot) { s.TechnicianID = nil }, ChangeReassigned, true},
		{"start", func(s *Snapshot) { s.StartTime = start.Add(time.Hour) }, ChangeRescheduled, true},
		{"status wins", func(s *Snapshot) {
			s.Status = model.AppointmentStatusCancelled
			s.TechnicianID = ptr(6)
			s.StartTime = start.Add(time.Hour)
		}, ChangeStatus, true},
		{"technician beats start", func(s *Snapshot) {
			s.TechnicianID = ptr(6)
			s.StartTime = start.Add(time.Hour)
		}, ChangeReassigned, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base
			tt.mutate(&next)
			got, ok := Classify(base, next)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUpdateEvent_CarriesPrevious(t *testing.T) {
	prev := Snapshot{ID: 1, TechnicianID: ptr(5), Status: model.AppointmentStatusPending}
	next := prev
	next.TechnicianID = ptr(6)

	ev, ok := NewUpdateEvent(3, model.RoleReceptionist, prev, next)
	require.True(t, ok)
	assert.Equal(t, ChangeReassigned, ev.Change)
	assert.Equal(t, int64(5), *ev.PrevTechnicianID)
	assert.Equal(t, model.AppointmentStatusPending, ev.PrevStatus)
	assert.NotEqual(t, [16]byte{}, [16]byte(ev.ID))
}

func TestSnapshotOf(t *testing.T) {
	a := &model.Appointment{ID: 4, CustomerID: 2, Customer: &model.User{FullName: "Lan"}}
	s := SnapshotOf(a)
	assert.Equal(t, "Lan", s.CustomerName)
	assert.Equal(t, int64(4), s.ID)

	assert.Empty(t, SnapshotOf(&model.Appointment{ID: 5}).CustomerName)
}
