package service

import (
	"context"
	"time"

	"github.com/Leganyst/salon-core/internal/apperror"
)

const DefaultMaxPendingBookings = 3

// PendingCounter is the part of the appointment store the guard needs.
type PendingCounter interface {
	CountPendingFuture(ctx context.Context, customerID int64, now time.Time) (int64, error)
}

// AdmissionGuard caps how many future PENDING appointments one customer may hold.
type AdmissionGuard struct {
	MaxPending int64
}

func NewAdmissionGuard(maxPending int64) AdmissionGuard {
	if maxPending <= 0 {
		maxPending = DefaultMaxPendingBookings
	}
	return AdmissionGuard{MaxPending: maxPending}
}

// Check rejects when the customer already holds MaxPending or more.
func (g AdmissionGuard) Check(ctx context.Context, store PendingCounter, customerID int64, now time.Time) error {
	n, err := store.CountPendingFuture(ctx, customerID, now)
	if err != nil {
		return err
	}
	if n >= g.MaxPending {
		return apperror.Admission("too many concurrent pending bookings")
	}
	return nil
}
