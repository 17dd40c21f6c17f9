// Package appointments tracks repair-service bookings.
package appointments

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no appointment matches the given id.
	ErrNotFound = errors.New("appointment not found")
	// ErrInvalidTransition indicates a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store is the persistence contract for appointments.
type Store interface {
	CreateAppointment(ctx context.Context, na NewAppointment) (Appointment, error)
	GetAppointmentByID(ctx context.Context, id string) (Appointment, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListUserAppointments(ctx context.Context, userID string) ([]Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status Status) (Appointment, error)
}

type Conf struct {
	store Store
}

func NewConf(store Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: store}, nil
}

// Create records a booking in the pending state.
func (c *Conf) Create(ctx context.Context, na NewAppointment) (Appointment, error) {
	return c.store.CreateAppointment(ctx, na)
}

func (c *Conf) GetByID(ctx context.Context, id string) (Appointment, error) {
	return c.store.GetAppointmentByID(ctx, id)
}

func (c *Conf) List(ctx context.Context) ([]Appointment, error) {
	return c.store.ListAppointments(ctx)
}

func (c *Conf) ListForUser(ctx context.Context, userID string) ([]Appointment, error) {
	return c.store.ListUserAppointments(ctx, userID)
}

// UpdateStatus applies a lifecycle transition.
func (c *Conf) UpdateStatus(ctx context.Context, id string, status Status) (Appointment, error) {
	if !status.Valid() {
		return Appointment{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	current, err := c.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !current.Status.CanTransitionTo(status) {
		return Appointment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	return c.store.UpdateAppointmentStatus(ctx, id, status)
}
