package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/salon-core/internal/model"
)

var allStatuses = []model.AppointmentStatus{
	model.AppointmentStatusPending,
	model.AppointmentStatusConfirmed,
	model.AppointmentStatusInProgress,
	model.AppointmentStatusCompleted,
	model.AppointmentStatusCancelled,
	model.AppointmentStatusPayment,
}

func statusEvent(role model.Role, st model.AppointmentStatus) Event {
	return Event{ActorRole: role, Change: ChangeStatus, Appointment: Snapshot{Status: st}}
}

type shape struct {
	To      Party
	Durable bool
}

func shapes(r Rule) []shape {
	out := make([]shape, 0, len(r.Deliveries))
	for _, d := range r.Deliveries {
		out = append(out, shape{d.To, d.Durable})
	}
	return out
}

// Every actor role that can act has an explicit entry for every status and change.
func TestRules_Complete(t *testing.T) {
	for _, role := range []model.Role{model.RoleCustomer, model.RoleReceptionist, model.RoleTechnician, model.RoleAdmin} {
		for _, st := range allStatuses {
			_, ok := Lookup(statusEvent(role, st))
			assert.True(t, ok, "%s %s", role, st)
		}
		for _, c := range []Change{ChangeCreated, ChangeReassigned, ChangeRescheduled} {
			_, ok := Lookup(Event{ActorRole: role, Change: c})
			assert.True(t, ok, "%s %s", role, c)
		}
	}
}

func TestRules_GenericUserIsSilent(t *testing.T) {
	for _, st := range allStatuses {
		_, ok := Lookup(statusEvent(model.RoleUser, st))
		assert.False(t, ok)
	}
	_, ok := Lookup(Event{ActorRole: model.RoleUser, Change: ChangeCreated})
	assert.False(t, ok)
}

func TestRules_Table(t *testing.T) {
	d := func(p Party) shape { return shape{p, true} }
	e := func(p Party) shape { return shape{p, false} }

	tests := []struct {
		ev   Event
		want []shape
	}{
		{Event{ActorRole: model.RoleCustomer, Change: ChangeCreated}, []shape{d(PartyAllReceptionists), d(PartyTechnician)}},
		{statusEvent(model.RoleCustomer, model.AppointmentStatusCancelled), []shape{d(PartyAllReceptionists)}},
		{statusEvent(model.RoleCustomer, model.AppointmentStatusConfirmed), []shape{}},
		{Event{ActorRole: model.RoleCustomer, Change: ChangeRescheduled}, []shape{e(PartyAllReceptionists)}},
		{statusEvent(model.RoleReceptionist, model.AppointmentStatusConfirmed), []shape{d(PartyCustomer), d(PartyTechnician)}},
		{statusEvent(model.RoleReceptionist, model.AppointmentStatusCancelled), []shape{d(PartyCustomer), d(PartyTechnician)}},
		{statusEvent(model.RoleReceptionist, model.AppointmentStatusPayment), []shape{d(PartyCustomer)}},
		{statusEvent(model.RoleReceptionist, model.AppointmentStatusCompleted), []shape{}},
		{Event{ActorRole: model.RoleReceptionist, Change: ChangeReassigned}, []shape{d(PartyTechnician), d(PartyPrevTechnician)}},
		{Event{ActorRole: model.RoleReceptionist, Change: ChangeRescheduled}, []shape{e(PartyCustomer)}},
		{statusEvent(model.RoleAdmin, model.AppointmentStatusPayment), []shape{d(PartyCustomer)}},
		{statusEvent(model.RoleTechnician, model.AppointmentStatusInProgress), []shape{d(PartyCustomer), d(PartyReceptionist)}},
		{statusEvent(model.RoleTechnician, model.AppointmentStatusCompleted), []shape{d(PartyCustomer), d(PartyReceptionist)}},
		{statusEvent(model.RoleTechnician, model.AppointmentStatusCancelled), []shape{}},
		{Event{ActorRole: model.RoleTechnician, Change: ChangeReassigned}, []shape{e(PartyCustomer)}},
	}
	for _, tt := range tests {
		r, ok := Lookup(tt.ev)
		require.True(t, ok, "%+v", tt.ev)
		assert.Equal(t, tt.want, shapes(r), "%s %s %s", tt.ev.ActorRole, tt.ev.Change, tt.ev.Appointment.Status)
	}
}

func TestRules_BodiesRender(t *testing.T) {
	for key, r := range rules {
		for _, d := range r.Deliveries {
			out, err := render(d.Body, templateData{AppointmentID: 1, CustomerName: "Lan", StartTime: "10:00 01/01/2030"})
			require.NoError(t, err, "%+v", key)
			assert.NotEmpty(t, d.Title)
			assert.Contains(t, out, "Lan")
		}
	}
}

func TestParty_Receiver(t *testing.T) {
	assert.Equal(t, model.ReceiverUser, PartyCustomer.Receiver())
	assert.Equal(t, model.ReceiverTechnician, PartyPrevTechnician.Receiver())
	assert.Equal(t, model.ReceiverReceptionist, PartyReceptionist.Receiver())
	assert.Equal(t, model.ReceiverAllReceptionist, PartyAllReceptionists.Receiver())
	assert.Equal(t, model.ReceiverAllTechnician, PartyAllTechnicians.Receiver())
	assert.Equal(t, model.ReceiverAll, PartyEveryone.Receiver())
}
