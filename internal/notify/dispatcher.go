package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Leganyst/salon-core/internal/model"
)

// NotificationWriter persists durable notifications.
type NotificationWriter interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Pusher is the push side of delivery.
type Pusher interface {
	Send(ctx context.Context, msg Message, tokens []string) Result
}

// TokenResolver maps an audience to device tokens.
type TokenResolver interface {
	Resolve(ctx context.Context, aud Audience) ([]string, error)
}

// Report summarises one dispatch. It is informational; dispatch never fails.
type Report struct {
	Planned       int
	Skipped       int // addressed to a party the appointment does not have
	Stored        int
	StoreFailures int
	Pushed        int // deliveries that reached at least one device
	PushFailures  int // deliveries whose tokens all failed, or could not be resolved
}

type Dispatcher struct {
	store    NotificationWriter
	resolver TokenResolver
	push     Pusher
	loc      *time.Location
	log      logrus.FieldLogger
}

func NewDispatcher(
	store NotificationWriter,
	resolver TokenResolver,
	push Pusher,
	loc *time.Location,
	log logrus.FieldLogger,
) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{store: store, resolver: resolver, push: push, loc: loc, log: log}
}

// planned is a delivery bound to a concrete addressee.
type planned struct {
	Delivery
	audience Audience
	userID   *int64
	title    string
	body     string
}

// Dispatch classifies the event and delivers every message it calls for.
// Store and push are attempted independently; failures are logged and counted.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Report {
	var rep Report
	log := d.log.WithFields(logrus.Fields{
		"event_id":       ev.ID.String(),
		"appointment_id": ev.Appointment.ID,
		"actor_id":       ev.ActorID,
		"actor_role":     ev.ActorRole,
		"change":         ev.Change,
	})

	rule, ok := Lookup(ev)
	if !ok {
		log.Debug("no notification rule")
		return rep
	}
	if len(rule.Deliveries) == 0 {
		log.Debug("rule says notify nobody")
		return rep
	}

	data := templateData{
		AppointmentID: ev.Appointment.ID,
		CustomerName:  ev.Appointment.CustomerName,
		StartTime:     ev.Appointment.StartTime.In(d.loc).Format(model.BusinessTimeLayout),
	}
	payload := d.payload(ev)

	for _, del := range rule.Deliveries {
		p, ok := d.bind(ev, del)
		if !ok {
			rep.Skipped++
			continue
		}
		body, err := render(del.Body, data)
		if err != nil {
			log.WithError(err).Error("render notification body")
			continue
		}
		p.title, p.body = del.Title, body
		rep.Planned++

		dlog := log.WithFields(logrus.Fields{"receiver": p.audience.Receiver, "durable": p.Durable})
		if p.Durable {
			if err := d.store.Create(ctx, d.record(ev, p, payload)); err != nil {
				rep.StoreFailures++
				dlog.WithError(err).Error("store notification")
			} else {
				rep.Stored++
			}
		}

		tokens, err := d.resolver.Resolve(ctx, p.audience)
		if err != nil {
			rep.PushFailures++
			dlog.WithError(err).Error("resolve push tokens")
			continue
		}
		if len(tokens) == 0 {
			dlog.Debug("no push tokens")
			continue
		}
		res := d.push.Send(ctx, Message{Title: p.title, Body: p.body, Data: stringify(payload)}, tokens)
		dlog = dlog.WithField("token_count", len(tokens))
		if res.Any() {
			rep.Pushed++
			dlog.WithField("succeeded", res.Succeeded).Debug("push sent")
		} else {
			rep.PushFailures++
			dlog.Warn("push failed for every token")
		}
	}

	log.WithFields(logrus.Fields{
		"planned":        rep.Planned,
		"stored":         rep.Stored,
		"store_failures": rep.StoreFailures,
		"pushed":         rep.Pushed,
		"push_failures":  rep.PushFailures,
		"skipped":        rep.Skipped,
	}).Info("notification dispatch finished")
	return rep
}

// bind resolves the delivery's party against the event, false if that party is absent.
func (d *Dispatcher) bind(ev Event, del Delivery) (planned, bool) {
	p := planned{Delivery: del}
	p.audience.Receiver = del.To.Receiver()

	var id *int64
	switch del.To {
	case PartyCustomer:
		cid := ev.Appointment.CustomerID
		id = &cid
	case PartyTechnician:
		id = ev.Appointment.TechnicianID
	case PartyPrevTechnician:
		if sameID(ev.PrevTechnicianID, ev.Appointment.TechnicianID) {
			return p, false
		}
		id = ev.PrevTechnicianID
	case PartyReceptionist:
		id = ev.Appointment.ReceptionistID
	default:
		return p, true
	}

	if id == nil || *id <= 0 {
		return p, false
	}
	v := *id
	p.userID = &v
	p.audience.UserID = v
	return p, true
}

func (d *Dispatcher) payload(ev Event) map[string]any {
	return map[string]any{
		"appointment_id": ev.Appointment.ID,
		"start_time":     ev.Appointment.StartTime.UTC().Format(time.RFC3339),
		"user_name":      ev.Appointment.CustomerName,
		"user_id":        ev.Appointment.CustomerID,
		"type":           model.NotificationTypeAppointment,
	}
}

func (d *Dispatcher) record(ev Event, p planned, payload map[string]any) *model.Notification {
	raw, _ := json.Marshal(payload)
	apptID := ev.Appointment.ID
	return &model.Notification{
		UserID:        p.userID,
		Title:         p.title,
		Body:          p.body,
		Receiver:      p.audience.Receiver,
		Type:          model.NotificationTypeAppointment,
		Data:          datatypes.JSON(raw),
		AppointmentID: &apptID,
	}
}

func stringify(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case int64:
			out[k] = strconv.FormatInt(t, 10)
		default:
			raw, _ := json.Marshal(t)
			out[k] = string(raw)
		}
	}
	return out
}
