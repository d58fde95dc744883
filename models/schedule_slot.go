package models

import "time"

// Schedule slot statuses.
const (
	SlotStatusPending  = "pending"
	SlotStatusApproved = "approved"
	SlotStatusRejected = "rejected"
)

// Slot kinds. Assigned slots are produced by the full-time fairness planner;
// requested slots are part-time shift requests. The planner's idempotent
// re-run clears only its own prior output, and request finalization only
// ever touches requested slots.
const (
	SlotKindAssigned  = "assigned"
	SlotKindRequested = "requested"
)

// ScheduleSlot is one (employee, date, shift window) entry. Date is a
// business-zone calendar date string (YYYY-MM-DD); StartTime/EndTime are
// HH:MM wall-clock strings. DurationMinutes is denormalized at insert time
// so fairness-history aggregation stays a single SQL sum.
type ScheduleSlot struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID      uint      `gorm:"not null;index" json:"employee_id"`
	Date            string    `gorm:"not null;index" json:"date"`
	StartTime       string    `gorm:"not null" json:"start_time"`
	EndTime         string    `gorm:"not null" json:"end_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"not null;index" json:"status"`
	Kind            string    `gorm:"not null;index" json:"kind"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}
