package appointments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"techstore/internal/appointments"
	"techstore/internal/stores/memory"
)

func newConf(t *testing.T) *appointments.Conf {
	t.Helper()
	a, err := appointments.NewConf(memory.New())
	require.NoError(t, err)
	return a
}

func book(t *testing.T, a *appointments.Conf) appointments.Appointment {
	t.Helper()
	appt, err := a.Create(context.Background(), appointments.NewAppointment{
		FullName:         "Asha Rao",
		Phone:            "+91 98765 43210",
		Email:            "asha@example.com",
		Device:           "iPhone 13",
		IssueDescription: "cracked screen",
	})
	require.NoError(t, err)
	return appt
}

func TestCreateStartsPending(t *testing.T) {
	a := newConf(t)
	appt := book(t, a)
	require.Equal(t, appointments.StatusPending, appt.Status)
	require.NotEmpty(t, appt.ID)
}

func TestStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	a := newConf(t)
	appt := book(t, a)

	appt, err := a.UpdateStatus(ctx, appt.ID, appointments.StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusInProgress, appt.Status)

	appt, err = a.UpdateStatus(ctx, appt.ID, appointments.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusCompleted, appt.Status)

	// Completed is terminal.
	_, err = a.UpdateStatus(ctx, appt.ID, appointments.StatusInProgress)
	require.ErrorIs(t, err, appointments.ErrInvalidTransition)
}

func TestCancellableFromNonTerminalStates(t *testing.T) {
	ctx := context.Background()
	a := newConf(t)

	fromPending := book(t, a)
	_, err := a.UpdateStatus(ctx, fromPending.ID, appointments.StatusCancelled)
	require.NoError(t, err)

	fromProgress := book(t, a)
	_, err = a.UpdateStatus(ctx, fromProgress.ID, appointments.StatusInProgress)
	require.NoError(t, err)
	_, err = a.UpdateStatus(ctx, fromProgress.ID, appointments.StatusCancelled)
	require.NoError(t, err)

	// Cancelled is terminal too.
	_, err = a.UpdateStatus(ctx, fromPending.ID, appointments.StatusInProgress)
	require.ErrorIs(t, err, appointments.ErrInvalidTransition)
}

func TestUpdateStatusRejectsSkipsAndUnknowns(t *testing.T) {
	ctx := context.Background()
	a := newConf(t)
	appt := book(t, a)

	_, err := a.UpdateStatus(ctx, appt.ID, appointments.StatusCompleted)
	require.ErrorIs(t, err, appointments.ErrInvalidTransition)

	_, err = a.UpdateStatus(ctx, appt.ID, appointments.Status("archived"))
	require.ErrorIs(t, err, appointments.ErrInvalidTransition)

	_, err = a.UpdateStatus(ctx, "missing", appointments.StatusInProgress)
	require.ErrorIs(t, err, appointments.ErrNotFound)
}

func TestListForUserFiltersGuests(t *testing.T) {
	ctx := context.Background()
	a := newConf(t)

	_, err := a.Create(ctx, appointments.NewAppointment{
		UserID: "user-1", FullName: "Asha Rao", Phone: "1", Email: "asha@example.com",
		Device: "iPad", IssueDescription: "battery",
	})
	require.NoError(t, err)
	book(t, a) // guest booking

	mine, err := a.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	all, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
