package model

import "gorm.io/gorm"

// AutoMigrate runs schema migration for every entity of the appointment core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ServiceItem{},
		&Appointment{},
		&AppointmentServiceItem{},
		&Notification{},
		&NotificationToken{},
	)
}
