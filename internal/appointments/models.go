package appointments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the move from s to next is allowed:
// pending → in-progress → completed, with cancellation from any
// non-terminal state. Completed and cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Appointment is a repair-service booking. Guests may book, so UserID is
// optional. Status transitions are the only mutation path after creation.
type Appointment struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId,omitempty"`
	FullName         string           `json:"fullName"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Device           string           `json:"device"`
	IssueDescription string           `json:"issueDescription"`
	Status           Status           `json:"status"`
	AppointmentDate  *time.Time       `json:"appointmentDate,omitempty"`
	EstimatedCost    *decimal.Decimal `json:"estimatedCost,omitempty"`
	ActualCost       *decimal.Decimal `json:"actualCost,omitempty"`
	TechnicianNotes  string           `json:"technicianNotes,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewAppointment carries a booking submission.
type NewAppointment struct {
	UserID           string `json:"userId"`
	FullName         string `json:"fullName" validate:"required"`
	Phone            string `json:"phone" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Device           string `json:"device" validate:"required"`
	IssueDescription string `json:"issueDescription" validate:"required"`
}
