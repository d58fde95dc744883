package models

import "time"

// IncidentReport records a workplace incident involving an employee.
type IncidentReport struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID  uint      `gorm:"not null;index" json:"employee_id"`
	Date        string    `gorm:"not null" json:"date"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (IncidentReport) TableName() string {
	return "incident_reports"
}

type ArchivedIncidentReport IncidentReport

func (ArchivedIncidentReport) TableName() string {
	return "archived_incident_reports"
}
