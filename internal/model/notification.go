package model

import (
	"time"

	"gorm.io/datatypes"
)

// Receiver is the audience class a notification was addressed to.
type Receiver string

const (
	ReceiverUser            Receiver = "USER"
	ReceiverReceptionist    Receiver = "RECEPTIONIST"
	ReceiverTechnician      Receiver = "TECHNICIAN"
	ReceiverAllReceptionist Receiver = "ALLRECEPTIONIST"
	ReceiverAllTechnician   Receiver = "ALLTECHNICIAN"
	ReceiverAll             Receiver = "ALL"
)

// IsBroadcast reports whether the receiver addresses a role rather than one person.
func (r Receiver) IsBroadcast() bool {
	return r == ReceiverAllReceptionist || r == ReceiverAllTechnician || r == ReceiverAll
}

// BroadcastReceiverFor returns the role-wide receiver class a user of role r
// belongs to. Admins share the front desk's broadcasts.
func BroadcastReceiverFor(r Role) (Receiver, bool) {
	switch r {
	case RoleReceptionist, RoleAdmin:
		return ReceiverAllReceptionist, true
	case RoleTechnician:
		return ReceiverAllTechnician, true
	}
	return "", false
}

// AudienceRoles lists the account roles a role-wide receiver resolves to.
func AudienceRoles(r Receiver) []Role {
	switch r {
	case ReceiverAllReceptionist:
		return []Role{RoleReceptionist, RoleAdmin}
	case ReceiverAllTechnician:
		return []Role{RoleTechnician}
	}
	return nil
}

const NotificationTypeAppointment = "APPOINTMENT"

// notifications: durable in-app history.
type Notification struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// Nil for role broadcasts.
	UserID *int64 `gorm:"index" json:"user_id,omitempty"`

	Title    string   `gorm:"type:varchar(255);not null" json:"title"`
	Body     string   `gorm:"type:text;not null" json:"body"`
	Receiver Receiver `gorm:"type:varchar(32);not null;index" json:"receiver"`
	Type     string   `gorm:"column:notification_type;type:varchar(32);not null;index" json:"type"`

	Data          datatypes.JSON `json:"data,omitempty"`
	AppointmentID *int64         `gorm:"index" json:"appointment_id,omitempty"`
	IsRead        bool           `gorm:"not null;default:false;index" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// notification_tokens: push delivery tokens, several per user.
type NotificationToken struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID   int64  `gorm:"not null;uniqueIndex:idx_notification_token" json:"user_id"`
	Platform string `gorm:"type:varchar(32);not null;uniqueIndex:idx_notification_token" json:"platform"`
	Token    string `gorm:"type:varchar(512);not null;uniqueIndex:idx_notification_token" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
