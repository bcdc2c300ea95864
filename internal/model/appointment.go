package model

import "time"

// BusinessTimeLayout is how the front desk writes times: "14:30 25/12/2025".
const BusinessTimeLayout = "15:04 02/01/2006"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed  AppointmentStatus = "CONFIRMED"
	AppointmentStatusInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted  AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled  AppointmentStatus = "CANCELLED"
	AppointmentStatusPayment    AppointmentStatus = "PAYMENT"
)

// ParseAppointmentStatus accepts the canonical upper-case names.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusPayment:
		return st, true
	}
	return "", false
}

// appointments
type Appointment struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	CustomerID     int64  `gorm:"not null;index" json:"customer_id"`
	ReceptionistID *int64 `gorm:"index" json:"receptionist_id,omitempty"`
	TechnicianID   *int64 `gorm:"index" json:"technician_id,omitempty"`
	UpdatedBy      int64  `gorm:"not null" json:"updated_by"`

	StartTime time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Status AppointmentStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	Notes  string            `gorm:"type:text" json:"notes"`

	// Integer currency units. TotalPrice = BasePrice + Surcharge - Promotion.
	Surcharge  int64 `gorm:"not null;default:0" json:"surcharge"`
	Promotion  int64 `gorm:"not null;default:0" json:"promotion"`
	BasePrice  int64 `gorm:"not null;default:0" json:"base_price"`
	TotalPrice int64 `gorm:"not null;default:0" json:"total_price"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`

	Items        []AppointmentServiceItem `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"services"`
	Customer     *User                    `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"customer,omitempty"`
	Receptionist *User                    `gorm:"foreignKey:ReceptionistID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"receptionist,omitempty"`
	Technician   *User                    `gorm:"foreignKey:TechnicianID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"technician,omitempty"`
}

// ServiceIDs returns the catalog ids of the line items in sequence order.
func (a *Appointment) ServiceIDs() []int64 {
	ids := make([]int64, 0, len(a.Items))
	for _, it := range a.Items {
		ids = append(ids, it.ServiceID)
	}
	return ids
}

// appointment_services: line items owned by an appointment.
type AppointmentServiceItem struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	AppointmentID int64  `gorm:"not null;index;uniqueIndex:idx_appointment_service" json:"appointment_id"`
	ServiceID     int64  `gorm:"not null;uniqueIndex:idx_appointment_service" json:"service_id"`
	TechnicianID  *int64 `json:"technician_id,omitempty"`
	Quantity      int    `gorm:"not null;default:1" json:"quantity"`
	Sequence      int    `gorm:"not null;default:0" json:"sequence"`
	UpdatedBy     int64  `json:"updated_by"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Service *ServiceItem `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service,omitempty"`
}

func (AppointmentServiceItem) TableName() string { return "appointment_services" }
