package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkDocument is a stored document (contract scan, certificate, ...) owned
// by an employee. RefID is a stable external correlation identifier that
// survives migration between the active and archive sets.
type WorkDocument struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID  uint      `gorm:"not null;index" json:"employee_id"`
	RefID       string    `gorm:"uniqueIndex;not null" json:"ref_id"`
	Title       string    `gorm:"not null" json:"title"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (WorkDocument) TableName() string {
	return "work_documents"
}

// BeforeCreate assigns a correlation ID if not provided.
func (d *WorkDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if d.RefID == "" {
		d.RefID = uuid.New().String()
	}
	return
}

type ArchivedWorkDocument WorkDocument

func (ArchivedWorkDocument) TableName() string {
	return "archived_work_documents"
}
