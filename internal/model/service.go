package model

import "time"

// service_items: bookable catalog entries with their current unit price.
type ServiceItem struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name   string `gorm:"type:varchar(255);not null" json:"service_name"`
	NameEn string `gorm:"type:varchar(255)" json:"service_name_en,omitempty"`

	// Integer currency units.
	Price int64 `gorm:"not null;default:0" json:"price"`

	IsActive bool `gorm:"not null;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
