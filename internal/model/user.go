package model

import "time"

// Role of an account. Owned by the account subsystem; read-only here.
type Role string

const (
	RoleCustomer     Role = "CUSTOMER"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleTechnician   Role = "TECHNICIAN"
	RoleAdmin        Role = "ADMIN"
	RoleUser         Role = "USER"
)

// IsStaff reports whether the role works on the business side.
func (r Role) IsStaff() bool {
	return r == RoleReceptionist || r == RoleTechnician || r == RoleAdmin
}

// users
type User struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	FullName string `gorm:"type:varchar(255)" json:"full_name"`
	Phone    string `gorm:"type:varchar(32)" json:"phone"`
	Role     Role   `gorm:"type:varchar(32);not null;index" json:"role"`
	IsActive bool   `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
