package types

type AppointmentStatus string

const (
	APPOINTMENT_STATUS_SCHEDULED   AppointmentStatus = "scheduled"
	APPOINTMENT_STATUS_IN_PROGRESS AppointmentStatus = "in_progress"
	APPOINTMENT_STATUS_COMPLETED   AppointmentStatus = "completed"
)

// Appointment is a scheduled session between a member and a counsellor.
// When a chat between the pair activates, the matching scheduled entry is
// marked started as a best-effort side effect.
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	UserID          string            `json:"user_id" db:"user_id"`
	CounsellorID    string            `json:"counsellor_id" db:"counsellor_id"`
	StartTime       int64             `json:"start_time" db:"start_time"`
	ActualStartTime int64             `json:"actual_start_time" db:"actual_start_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	IsConfirmed     bool              `json:"is_confirmed" db:"is_confirmed"`
	CreatedAt       int64             `json:"created_at" db:"created_at"`
}
