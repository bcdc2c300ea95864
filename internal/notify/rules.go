package notify

import (
	"bytes"
	"text/template"

	"github.com/Leganyst/salon-core/internal/model"
)

// Party is an audience reference resolved against the event at send time.
type Party int

const (
	PartyCustomer Party = iota + 1
	PartyTechnician
	PartyPrevTechnician
	PartyReceptionist
	PartyAllReceptionists
	PartyAllTechnicians
	PartyEveryone
)

func (p Party) String() string {
	switch p {
	case PartyCustomer:
		return "customer"
	case PartyTechnician:
		return "technician"
	case PartyPrevTechnician:
		return "previous_technician"
	case PartyReceptionist:
		return "receptionist"
	case PartyAllReceptionists:
		return "all_receptionists"
	case PartyAllTechnicians:
		return "all_technicians"
	case PartyEveryone:
		return "everyone"
	}
	return "unknown"
}

// Receiver is the receiver class stored with a notification addressed to p.
func (p Party) Receiver() model.Receiver {
	switch p {
	case PartyCustomer:
		return model.ReceiverUser
	case PartyTechnician, PartyPrevTechnician:
		return model.ReceiverTechnician
	case PartyReceptionist:
		return model.ReceiverReceptionist
	case PartyAllReceptionists:
		return model.ReceiverAllReceptionist
	case PartyAllTechnicians:
		return model.ReceiverAllTechnician
	}
	return model.ReceiverAll
}

// Delivery is one message to one audience.
type Delivery struct {
	To      Party
	Durable bool
	Title   string
	Body    *template.Template
}

// Rule is the outcome for one (actor role, change, status) key.
// A rule with no deliveries is an explicit "tell nobody".
type Rule struct {
	Deliveries []Delivery
}

type ruleKey struct {
	Role   model.Role
	Change Change
	Status model.AppointmentStatus // only for ChangeStatus
}

// templateData is what message bodies may reference.
type templateData struct {
	AppointmentID int64
	CustomerName  string
	StartTime     string
}

func body(text string) *template.Template {
	return template.Must(template.New("").Parse(text))
}

var (
	bodyCreated     = body("New appointment from {{.CustomerName}}. Time: {{.StartTime}}")
	bodyCancelled   = body("{{.CustomerName}} cancelled the appointment. Time: {{.StartTime}}")
	bodyCustUpdated = body("{{.CustomerName}} updated the appointment. Time: {{.StartTime}}")
	bodyConfirmed   = body("The appointment of {{.CustomerName}} is confirmed. Time: {{.StartTime}}")
	bodyDeskCancel  = body("The appointment of {{.CustomerName}} was cancelled. Time: {{.StartTime}}")
	bodyPaid        = body("The appointment of {{.CustomerName}} has been paid. Time: {{.StartTime}}")
	bodyAssigned    = body("You have been assigned to the appointment of {{.CustomerName}}. Time: {{.StartTime}}")
	bodyUnassigned  = body("You are no longer assigned to the appointment of {{.CustomerName}}. Time: {{.StartTime}}")
	bodyStaffUpdate = body("The appointment of {{.CustomerName}} was updated. Please check it. Time: {{.StartTime}}")
	bodyStarted     = body("The technician started the service for {{.CustomerName}}. Time: {{.StartTime}}")
	bodyCompleted   = body("The appointment of {{.CustomerName}} is completed. Please pay at the front desk.")
)

func durable(title string, tpl *template.Template, to ...Party) []Delivery {
	out := make([]Delivery, 0, len(to))
	for _, p := range to {
		out = append(out, Delivery{To: p, Durable: true, Title: title, Body: tpl})
	}
	return out
}

func ephemeral(title string, tpl *template.Template, to ...Party) []Delivery {
	out := make([]Delivery, 0, len(to))
	for _, p := range to {
		out = append(out, Delivery{To: p, Title: title, Body: tpl})
	}
	return out
}

var none = Rule{}

func statusKey(role model.Role, st model.AppointmentStatus) ruleKey {
	return ruleKey{Role: role, Change: ChangeStatus, Status: st}
}

func changeKey(role model.Role, c Change) ruleKey {
	return ruleKey{Role: role, Change: c}
}

// rules is the complete routing table. Admins use the receptionist rows;
// generic users have no rows.
var rules = map[ruleKey]Rule{
	changeKey(model.RoleCustomer, ChangeCreated):     {durable("New appointment", bodyCreated, PartyAllReceptionists, PartyTechnician)},
	changeKey(model.RoleReceptionist, ChangeCreated): {durable("New appointment", bodyCreated, PartyAllReceptionists, PartyTechnician)},
	changeKey(model.RoleTechnician, ChangeCreated):   {durable("New appointment", bodyCreated, PartyAllReceptionists, PartyTechnician)},

	statusKey(model.RoleCustomer, model.AppointmentStatusCancelled):  {durable("Appointment cancelled", bodyCancelled, PartyAllReceptionists)},
	statusKey(model.RoleCustomer, model.AppointmentStatusPending):    none,
	statusKey(model.RoleCustomer, model.AppointmentStatusConfirmed):  none,
	statusKey(model.RoleCustomer, model.AppointmentStatusInProgress): none,
	statusKey(model.RoleCustomer, model.AppointmentStatusCompleted):  none,
	statusKey(model.RoleCustomer, model.AppointmentStatusPayment):    none,
	changeKey(model.RoleCustomer, ChangeReassigned):                  {ephemeral("Appointment updated", bodyCustUpdated, PartyAllReceptionists)},
	changeKey(model.RoleCustomer, ChangeRescheduled):                 {ephemeral("Appointment updated", bodyCustUpdated, PartyAllReceptionists)},

	statusKey(model.RoleReceptionist, model.AppointmentStatusConfirmed):  {durable("Appointment confirmed", bodyConfirmed, PartyCustomer, PartyTechnician)},
	statusKey(model.RoleReceptionist, model.AppointmentStatusCancelled):  {durable("Appointment cancelled", bodyDeskCancel, PartyCustomer, PartyTechnician)},
	statusKey(model.RoleReceptionist, model.AppointmentStatusPayment):    {durable("Payment received", bodyPaid, PartyCustomer)},
	statusKey(model.RoleReceptionist, model.AppointmentStatusPending):    none,
	statusKey(model.RoleReceptionist, model.AppointmentStatusInProgress): none,
	statusKey(model.RoleReceptionist, model.AppointmentStatusCompleted):  none,
	changeKey(model.RoleReceptionist, ChangeReassigned): {append(
		durable("Appointment assigned", bodyAssigned, PartyTechnician),
		durable("Appointment unassigned", bodyUnassigned, PartyPrevTechnician)...,
	)},
	changeKey(model.RoleReceptionist, ChangeRescheduled): {ephemeral("Appointment updated", bodyStaffUpdate, PartyCustomer)},

	statusKey(model.RoleTechnician, model.AppointmentStatusInProgress): {durable("Service started", bodyStarted, PartyCustomer, PartyReceptionist)},
	statusKey(model.RoleTechnician, model.AppointmentStatusCompleted):  {durable("Appointment completed", bodyCompleted, PartyCustomer, PartyReceptionist)},
	statusKey(model.RoleTechnician, model.AppointmentStatusPending):    none,
	statusKey(model.RoleTechnician, model.AppointmentStatusConfirmed):  none,
	statusKey(model.RoleTechnician, model.AppointmentStatusCancelled):  none,
	statusKey(model.RoleTechnician, model.AppointmentStatusPayment):    none,
	changeKey(model.RoleTechnician, ChangeReassigned):                  {ephemeral("Appointment updated", bodyStaffUpdate, PartyCustomer)},
	changeKey(model.RoleTechnician, ChangeRescheduled):                 {ephemeral("Appointment updated", bodyStaffUpdate, PartyCustomer)},
}

// Lookup returns the rule for an event and whether the table has an entry.
func Lookup(ev Event) (Rule, bool) {
	role := ev.ActorRole
	if role == model.RoleAdmin {
		role = model.RoleReceptionist
	}
	key := ruleKey{Role: role, Change: ev.Change}
	if ev.Change == ChangeStatus {
		key.Status = ev.Appointment.Status
	}
	r, ok := rules[key]
	return r, ok
}

func render(tpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
