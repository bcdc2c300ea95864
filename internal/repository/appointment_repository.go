package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
)

// AppointmentFilter narrows List. Nil fields are ignored.
type AppointmentFilter struct {
	CustomerID     *int64
	ReceptionistID *int64
	TechnicianID   *int64
	Status         *model.AppointmentStatus
	StartFrom      *time.Time // start_time >= StartFrom
	EndTo          *time.Time // end_time <= EndTo
}

var appointmentOrderColumns = map[string]string{
	"created_at": "created_at",
	"start_time": "start_time",
	"status":     "status",
}

type AppointmentRepository interface {
	WithTx(tx *gorm.DB) AppointmentRepository
	// Insert the appointment row and its line items.
	Create(ctx context.Context, a *model.Appointment) error
	// Row plus line items, no account data.
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	// Row, line items with catalog entries, and the three account summaries.
	GetView(ctx context.Context, id int64) (*model.Appointment, error)
	// Persist every column of the row; associations are left alone.
	Save(ctx context.Context, a *model.Appointment) error
	// Reconcile line items to exactly serviceIDs.
	SyncItems(ctx context.Context, appointmentID int64, serviceIDs []int64, technicianID *int64, updatedBy int64) error
	Delete(ctx context.Context, id int64) error
	// Future PENDING appointments of a customer.
	CountPendingFuture(ctx context.Context, customerID int64, now time.Time) (int64, error)
	List(ctx context.Context, f AppointmentFilter, opts pagination.Options) ([]model.Appointment, int64, error)
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) WithTx(tx *gorm.DB) AppointmentRepository {
	return &GormAppointmentRepository{db: tx}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	items := a.Items
	a.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].AppointmentID = a.ID
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	a.Items = items
	return translate("create appointment", "appointment", err)
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	var a model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate("get appointment", "appointment", err)
	}
	return &a, nil
}

func (r *GormAppointmentRepository) GetView(ctx context.Context, id int64) (*model.Appointment, error) {
	var a model.Appointment
	err := withView(r.db.WithContext(ctx)).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate("get appointment", "appointment", err)
	}
	return &a, nil
}

func (r *GormAppointmentRepository) Save(ctx context.Context, a *model.Appointment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
	return translate("update appointment", "appointment", err)
}

func (r *GormAppointmentRepository) SyncItems(
	ctx context.Context,
	appointmentID int64,
	serviceIDs []int64,
	technicianID *int64,
	updatedBy int64,
) error {
	db := r.db.WithContext(ctx)

	var existing []int64
	if err := db.Model(&model.AppointmentServiceItem{}).
		Where("appointment_id = ?", appointmentID).
		Pluck("service_id", &existing).Error; err != nil {
		return translate("load appointment services", "appointment", err)
	}

	del := db.Where("appointment_id = ?", appointmentID)
	if len(serviceIDs) > 0 {
		del = del.Where("service_id NOT IN ?", serviceIDs)
	}
	if err := del.Delete(&model.AppointmentServiceItem{}).Error; err != nil {
		return translate("delete appointment services", "appointment", err)
	}

	have := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	var add []model.AppointmentServiceItem
	for seq, id := range serviceIDs {
		if _, ok := have[id]; ok {
			continue
		}
		add = append(add, model.AppointmentServiceItem{
			AppointmentID: appointmentID,
			ServiceID:     id,
			TechnicianID:  technicianID,
			Quantity:      1,
			Sequence:      seq,
			UpdatedBy:     updatedBy,
		})
	}
	if len(add) == 0 {
		return nil
	}
	if err := db.Omit(clause.Associations).Create(&add).Error; err != nil {
		return translate("insert appointment services", "service", err)
	}
	return nil
}

func (r *GormAppointmentRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", id).Delete(&model.AppointmentServiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Appointment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("appointment")
		}
		return nil
	})
	return translate("delete appointment", "appointment", err)
}

func (r *GormAppointmentRepository) CountPendingFuture(ctx context.Context, customerID int64, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("customer_id = ?", customerID).
		Where("status = ?", model.AppointmentStatusPending).
		Where("start_time > ?", now.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, translate("count pending appointments", "appointment", err)
	}
	return n, nil
}

func (r *GormAppointmentRepository) List(
	ctx context.Context,
	f AppointmentFilter,
	opts pagination.Options,
) ([]model.Appointment, int64, error) {
	var (
		appointments []model.Appointment
		total        int64
	)

	q := r.db.WithContext(ctx).Model(&model.Appointment{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.ReceptionistID != nil {
		q = q.Where("receptionist_id = ?", *f.ReceptionistID)
	}
	if f.TechnicianID != nil {
		q = q.Where("technician_id = ?", *f.TechnicianID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.StartFrom != nil {
		q = q.Where("start_time >= ?", f.StartFrom.UTC())
	}
	if f.EndTo != nil {
		q = q.Where("end_time <= ?", f.EndTo.UTC())
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count appointments", "appointment", err)
	}

	col, ok := appointmentOrderColumns[opts.OrderBy]
	if !ok {
		col = "created_at"
		opts.Desc = true
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: opts.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := withView(q).Find(&appointments).Error; err != nil {
		return nil, 0, translate("list appointments", "appointment", err)
	}

	return appointments, total, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC").Order("id ASC")
}

func withView(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", orderItems).
		Preload("Items.Service").
		Preload("Customer").
		Preload("Receptionist").
		Preload("Technician")
}
