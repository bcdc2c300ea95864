package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/notify"
	"github.com/Leganyst/salon-core/internal/pagination"
	"github.com/Leganyst/salon-core/internal/repository"
)

// Notifier hands a committed change to background fan-out. It must not block.
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event) bool
}

type CreateAppointmentInput struct {
	CustomerID     int64 // ignored for customers, who always book for themselves
	ServiceIDs     []int64
	TechnicianID   *int64
	ReceptionistID *int64
	StartTime      string
	EndTime        *string
	Status         *string
	Notes          string
	Surcharge      int64
	Promotion      int64
}

// UpdateAppointmentInput is a partial update; nil fields are left unchanged.
type UpdateAppointmentInput struct {
	ServiceIDs     []int64
	TechnicianID   *int64
	ReceptionistID *int64
	StartTime      *string
	EndTime        *string
	Status         *string
	Notes          *string
	Surcharge      *int64
	Promotion      *int64
}

func (in UpdateAppointmentInput) onlyStatus() bool {
	return in.ServiceIDs == nil && in.TechnicianID == nil && in.ReceptionistID == nil &&
		in.StartTime == nil && in.EndTime == nil && in.Notes == nil &&
		in.Surcharge == nil && in.Promotion == nil
}

type ListAppointmentsInput struct {
	Filter  repository.AppointmentFilter
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

type AppointmentService struct {
	db           *gorm.DB
	appointments repository.AppointmentRepository
	catalog      repository.ServiceCatalog
	accounts     repository.AccountDirectory
	pricing      PricingCalculator
	admission    AdmissionGuard
	notifier     Notifier
	loc          *time.Location
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewAppointmentService(
	db *gorm.DB,
	appointments repository.AppointmentRepository,
	catalog repository.ServiceCatalog,
	accounts repository.AccountDirectory,
	admission AdmissionGuard,
	notifier Notifier,
	loc *time.Location,
	log logrus.FieldLogger,
) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{
		db:           db,
		appointments: appointments,
		catalog:      catalog,
		accounts:     accounts,
		admission:    admission,
		notifier:     notifier,
		loc:          loc,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create validates, prices and inserts an appointment with its line items in
// one transaction, then hands the change to fan-out.
func (s *AppointmentService) Create(ctx context.Context, actor Actor, in CreateAppointmentInput) (*model.Appointment, error) {
	if actor.Role == model.RoleUser {
		return nil, apperror.Forbidden("this account cannot book appointments")
	}

	customerID := in.CustomerID
	if actor.Role == model.RoleCustomer {
		if customerID != 0 && customerID != actor.ID {
			return nil, apperror.Forbidden("customers can only book for themselves")
		}
		if in.TechnicianID != nil || in.ReceptionistID != nil || in.Surcharge != 0 || in.Promotion != 0 {
			return nil, apperror.Forbidden("customers cannot set staff or price adjustments")
		}
		customerID = actor.ID
	}
	if customerID <= 0 {
		return nil, apperror.Validation("customer_id is required")
	}

	status, err := initialStatus(in.Status, actor.Role)
	if err != nil {
		return nil, err
	}

	if len(in.ServiceIDs) == 0 {
		return nil, apperror.Validation("at least one service is required")
	}

	now := s.now()
	start, end, err := s.parseWindow(in.StartTime, in.EndTime, now)
	if err != nil {
		return nil, err
	}

	receptionistID := in.ReceptionistID
	if receptionistID == nil && actor.Role == model.RoleReceptionist {
		id := actor.ID
		receptionistID = &id
	}

	if actor.Role != model.RoleCustomer {
		if err := s.checkAccount(ctx, customerID, "customer"); err != nil {
			return nil, err
		}
	}
	if err := s.checkStaff(ctx, in.TechnicianID, model.RoleTechnician, "technician"); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, receptionistID, model.RoleReceptionist, "receptionist"); err != nil {
		return nil, err
	}

	serviceIDs := uniqueIDs(in.ServiceIDs)
	a := &model.Appointment{
		CustomerID:     customerID,
		ReceptionistID: receptionistID,
		TechnicianID:   in.TechnicianID,
		UpdatedBy:      actor.ID,
		StartTime:      start,
		EndTime:        end,
		Status:         status,
		Notes:          strings.TrimSpace(in.Notes),
		Surcharge:      in.Surcharge,
		Promotion:      in.Promotion,
	}
	for seq, id := range serviceIDs {
		a.Items = append(a.Items, model.AppointmentServiceItem{
			ServiceID:    id,
			TechnicianID: in.TechnicianID,
			Quantity:     1,
			Sequence:     seq,
			UpdatedBy:    actor.ID,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appointments := s.appointments.WithTx(tx)

		if err := s.admission.Check(ctx, appointments, customerID, now); err != nil {
			return err
		}

		price, err := s.pricing.Quote(ctx, s.catalog.WithTx(tx), serviceIDs, in.Surcharge, in.Promotion)
		if err != nil {
			return err
		}
		a.BasePrice, a.TotalPrice = price.Base, price.Total

		return appointments.Create(ctx, a)
	})
	if err != nil {
		return nil, s.fail("create appointment", err)
	}

	view, err := s.appointments.GetView(ctx, a.ID)
	if err != nil {
		return nil, s.fail("load appointment", err)
	}

	s.notify(ctx, notify.NewCreatedEvent(actor.ID, actor.Role, notify.SnapshotOf(view)))
	return view, nil
}

// Update applies a partial change under the state machine and role rules.
func (s *AppointmentService) Update(ctx context.Context, actor Actor, id int64, in UpdateAppointmentInput) (*model.Appointment, error) {
	if actor.Role == model.RoleUser {
		return nil, apperror.Forbidden("this account cannot change appointments")
	}
	if in.ServiceIDs != nil && len(in.ServiceIDs) == 0 {
		return nil, apperror.Validation("at least one service is required")
	}
	if err := s.checkStaff(ctx, in.TechnicianID, model.RoleTechnician, "technician"); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, in.ReceptionistID, model.RoleReceptionist, "receptionist"); err != nil {
		return nil, err
	}

	prevView, err := s.appointments.GetView(ctx, id)
	if err != nil {
		return nil, s.fail("load appointment", err)
	}
	if actor.Role == model.RoleCustomer && prevView.CustomerID != actor.ID {
		return nil, apperror.NotFound("appointment")
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appointments := s.appointments.WithTx(tx)

		a, err := appointments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := customerMayUpdate(actor, a, in); err != nil {
			return err
		}
		if IsTerminal(a.Status) && !in.onlyStatus() {
			return apperror.Validation("appointment is %s and can no longer be edited", a.Status)
		}

		if in.StartTime != nil || in.EndTime != nil {
			startRaw := ""
			if in.StartTime != nil {
				startRaw = *in.StartTime
			}
			start, end, err := s.parseUpdateWindow(a, startRaw, in.EndTime, now)
			if err != nil {
				return err
			}
			a.StartTime, a.EndTime = start, end
		}

		if in.Status != nil {
			next, ok := model.ParseAppointmentStatus(*in.Status)
			if !ok {
				return apperror.Validation("unknown status %q", *in.Status)
			}
			if err := checkTransition(a.Status, next); err != nil {
				return err
			}
			if next == model.AppointmentStatusCompleted && a.CompletedAt == nil {
				t := now
				a.CompletedAt = &t
			}
			a.Status = next
		}

		if in.TechnicianID != nil {
			a.TechnicianID = in.TechnicianID
		}
		if in.ReceptionistID != nil {
			a.ReceptionistID = in.ReceptionistID
		}
		if in.Notes != nil {
			a.Notes = strings.TrimSpace(*in.Notes)
		}
		if in.Surcharge != nil {
			a.Surcharge = *in.Surcharge
		}
		if in.Promotion != nil {
			a.Promotion = *in.Promotion
		}

		if in.ServiceIDs != nil {
			ids := uniqueIDs(in.ServiceIDs)
			price, err := s.pricing.Quote(ctx, s.catalog.WithTx(tx), ids, a.Surcharge, a.Promotion)
			if err != nil {
				return err
			}
			if err := appointments.SyncItems(ctx, a.ID, ids, a.TechnicianID, actor.ID); err != nil {
				return err
			}
			a.BasePrice, a.TotalPrice = price.Base, price.Total
		} else {
			total, err := TotalPrice(a.BasePrice, a.Surcharge, a.Promotion)
			if err != nil {
				return err
			}
			a.TotalPrice = total
		}

		a.UpdatedBy = actor.ID
		return appointments.Save(ctx, a)
	})
	if err != nil {
		return nil, s.fail("update appointment", err)
	}

	view, err := s.appointments.GetView(ctx, id)
	if err != nil {
		return nil, s.fail("load appointment", err)
	}

	if ev, ok := notify.NewUpdateEvent(actor.ID, actor.Role, notify.SnapshotOf(prevView), notify.SnapshotOf(view)); ok {
		s.notify(ctx, ev)
	}
	return view, nil
}

// Delete hard-deletes an appointment and its line items. Staff only.
func (s *AppointmentService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.Role.IsStaff() {
		return apperror.Forbidden("only staff can delete appointments")
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return s.fail("delete appointment", err)
	}
	s.log.WithFields(logrus.Fields{"appointment_id": id, "actor_id": actor.ID}).Info("appointment deleted")
	return nil
}

// Get returns one appointment. Customers only see their own.
func (s *AppointmentService) Get(ctx context.Context, actor Actor, id int64) (*model.Appointment, error) {
	view, err := s.appointments.GetView(ctx, id)
	if err != nil {
		return nil, s.fail("get appointment", err)
	}
	if !actor.Role.IsStaff() && view.CustomerID != actor.ID {
		return nil, apperror.NotFound("appointment")
	}
	return view, nil
}

// ListMine lists the actor's own bookings.
func (s *AppointmentService) ListMine(ctx context.Context, actor Actor, in ListAppointmentsInput) (pagination.Page[model.Appointment], error) {
	id := actor.ID
	in.Filter.CustomerID = &id
	return s.list(ctx, in)
}

// ListAssigned lists appointments assigned to the acting technician.
func (s *AppointmentService) ListAssigned(ctx context.Context, actor Actor, in ListAppointmentsInput) (pagination.Page[model.Appointment], error) {
	if actor.Role != model.RoleTechnician {
		return pagination.Page[model.Appointment]{}, apperror.Forbidden("only technicians have assigned appointments")
	}
	id := actor.ID
	in.Filter.TechnicianID = &id
	return s.list(ctx, in)
}

// List is the staff-wide filtered list.
func (s *AppointmentService) List(ctx context.Context, actor Actor, in ListAppointmentsInput) (pagination.Page[model.Appointment], error) {
	if !actor.Role.IsStaff() {
		return pagination.Page[model.Appointment]{}, apperror.Forbidden("only staff can list all appointments")
	}
	return s.list(ctx, in)
}

func (s *AppointmentService) list(ctx context.Context, in ListAppointmentsInput) (pagination.Page[model.Appointment], error) {
	opts := pagination.Normalize(in.Limit, in.Offset)
	opts.OrderBy, opts.Desc = in.OrderBy, in.Desc

	items, total, err := s.appointments.List(ctx, in.Filter, opts)
	if err != nil {
		return pagination.Page[model.Appointment]{}, s.fail("list appointments", err)
	}
	return pagination.NewPage(items, total, opts), nil
}

// customerMayUpdate enforces what a customer can change on their own booking.
func customerMayUpdate(actor Actor, a *model.Appointment, in UpdateAppointmentInput) error {
	if actor.Role != model.RoleCustomer {
		return nil
	}
	if a.CustomerID != actor.ID {
		return apperror.NotFound("appointment")
	}
	if in.TechnicianID != nil || in.ReceptionistID != nil || in.Surcharge != nil || in.Promotion != nil {
		return apperror.Forbidden("customers cannot change staff or price adjustments")
	}
	if in.Status != nil && *in.Status != string(model.AppointmentStatusCancelled) && *in.Status != string(a.Status) {
		return apperror.Forbidden("customers can only cancel")
	}
	switch a.Status {
	case model.AppointmentStatusPending:
		return nil
	case model.AppointmentStatusConfirmed:
		if in.Status != nil && in.onlyStatus() {
			return nil
		}
		return apperror.Forbidden("a confirmed appointment can only be cancelled")
	}
	return apperror.Forbidden("appointment can no longer be changed")
}

func (s *AppointmentService) parseWindow(startRaw string, endRaw *string, now time.Time) (time.Time, *time.Time, error) {
	if strings.TrimSpace(startRaw) == "" {
		return time.Time{}, nil, apperror.Validation("start_time is required")
	}
	start, err := ParseTime(startRaw, s.loc)
	if err != nil {
		return time.Time{}, nil, err
	}
	if !start.After(now) {
		return time.Time{}, nil, apperror.Validation("start time must be in the future")
	}
	end, err := s.parseEnd(start, endRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, end, nil
}

func (s *AppointmentService) parseUpdateWindow(a *model.Appointment, startRaw string, endRaw *string, now time.Time) (time.Time, *time.Time, error) {
	start := a.StartTime
	if startRaw != "" {
		var err error
		if start, err = ParseTime(startRaw, s.loc); err != nil {
			return time.Time{}, nil, err
		}
		if !start.After(now) {
			return time.Time{}, nil, apperror.Validation("start time must be in the future")
		}
	}
	if endRaw == nil {
		if a.EndTime != nil && !a.EndTime.After(start) {
			return time.Time{}, nil, apperror.Validation("end time must be after start time")
		}
		return start, a.EndTime, nil
	}
	end, err := s.parseEnd(start, endRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, end, nil
}

func (s *AppointmentService) parseEnd(start time.Time, endRaw *string) (*time.Time, error) {
	if endRaw == nil || strings.TrimSpace(*endRaw) == "" {
		return nil, nil
	}
	end, err := ParseTime(*endRaw, s.loc)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, apperror.Validation("end time must be after start time")
	}
	return &end, nil
}

// checkAccount verifies a referenced account exists and is active.
func (s *AppointmentService) checkAccount(ctx context.Context, id int64, what string) error {
	active, err := s.accounts.IsActive(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("%s %d not found", what, id)
		}
		return err
	}
	if !active {
		return apperror.Validation("%s %d is inactive", what, id)
	}
	return nil
}

func (s *AppointmentService) checkStaff(ctx context.Context, id *int64, role model.Role, what string) error {
	if id == nil {
		return nil
	}
	u, err := s.accounts.GetByID(ctx, *id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("%s %d not found", what, *id)
		}
		return err
	}
	if !u.IsActive || (u.Role != role && u.Role != model.RoleAdmin) {
		return apperror.Validation("user %d is not an active %s", *id, what)
	}
	return nil
}

func (s *AppointmentService) notify(ctx context.Context, ev notify.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, ev)
}

// fail logs infrastructure errors and passes client errors through untouched.
func (s *AppointmentService) fail(op string, err error) error {
	if apperror.KindOf(err) == apperror.KindInternal {
		s.log.WithError(err).WithField("op", op).Error("appointment operation failed")
	}
	return err
}
