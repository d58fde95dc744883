package models

import "time"

// Employment classification tags, shared by employees and contracts.
const (
	EmploymentFullTime = "Full-Time"
	EmploymentPartTime = "Part-Time"
)

// Employee statuses. Employed and Probationary are protected: a protected
// employee is never scheduled for archival regardless of any dates on record.
const (
	StatusEmployed     = "Employed"
	StatusProbationary = "Probationary"
	StatusResigned     = "Resigned"
	StatusDismissed    = "Dismissed"
	StatusRetired      = "Retired"
)

// Archival reasons recorded when an employee is moved to the archive set.
const (
	ArchivalReasonDeleted         = "deleted"
	ArchivalReasonContractExpired = "contract_expired"
)

// Employee represents a currently-active staff member. The same identity key
// lives in exactly one of the 'employees' or 'archived_employees' tables at
// any instant; migration between the two preserves the ID.
type Employee struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName      string `gorm:"not null" json:"first_name"`
	LastName       string `gorm:"not null" json:"last_name"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	Phone          string `json:"phone"`
	EmploymentType string `gorm:"not null" json:"employment_type"`
	Status         string `gorm:"not null;index" json:"status"`

	// EffectiveDeletionDate is an explicit administrative archival date; it
	// takes precedence over any contract expiry. Calendar date or timestamp
	// string, resolved by services.ResolveTriggerInstant.
	EffectiveDeletionDate *string `json:"effective_deletion_date,omitempty"`

	// ReinstatementDate drives the archive-to-active restoration trigger.
	ReinstatementDate *string `json:"reinstatement_date,omitempty"`

	// ArchivalReason is set during archival and carried back on restore.
	ArchivalReason string `json:"archival_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// IsProtected reports whether the employee's status shields them from
// deletion scheduling.
func (e *Employee) IsProtected() bool {
	return e.Status == StatusEmployed || e.Status == StatusProbationary
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ArchivedEmployee mirrors Employee column-for-column in the archive set.
type ArchivedEmployee Employee

func (ArchivedEmployee) TableName() string {
	return "archived_employees"
}

func (e *ArchivedEmployee) FullName() string {
	return e.FirstName + " " + e.LastName
}
