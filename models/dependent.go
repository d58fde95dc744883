package models

import "time"

// Dependent is the zero-or-one emergency contact attached to an employee.
type Dependent struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID   uint      `gorm:"not null;uniqueIndex" json:"employee_id"`
	FullName     string    `gorm:"not null" json:"full_name"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Dependent) TableName() string {
	return "dependents"
}

type ArchivedDependent Dependent

func (ArchivedDependent) TableName() string {
	return "archived_dependents"
}
