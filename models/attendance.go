package models

import "time"

// AttendanceRecord is one clock-in/clock-out pair for an employee on a given
// calendar date.
type AttendanceRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID uint      `gorm:"not null;index" json:"employee_id"`
	Date       string    `gorm:"not null" json:"date"`
	ClockIn    string    `json:"clock_in"`
	ClockOut   string    `json:"clock_out"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

type ArchivedAttendanceRecord AttendanceRecord

func (ArchivedAttendanceRecord) TableName() string {
	return "archived_attendance_records"
}
