package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/models"
)

// ScheduleRepository handles database operations for schedule slots
type ScheduleRepository struct {
	DB *gorm.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// Create creates a new schedule slot record in the database
func (r *ScheduleRepository) Create(slot *models.ScheduleSlot) error {
	err := r.DB.Create(slot).Error
	if err != nil {
		return fmt.Errorf("failed to create schedule slot for employee ID %d on %s: %w",
			slot.EmployeeID, slot.Date, err)
	}
	return nil
}

// ListByEmployee retrieves all schedule slots for a given employee ID
func (r *ScheduleRepository) ListByEmployee(employeeID uint) ([]models.ScheduleSlot, error) {
	var slots []models.ScheduleSlot
	err := r.DB.Where("employee_id = ?", employeeID).Order("date ASC").Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slots for employee ID %d: %w", employeeID, err)
	}
	return slots, nil
}

// ClearAssignedInRange removes planner-produced slots for dates in
// [startDate, endDate]
func (r *ScheduleRepository) ClearAssignedInRange(startDate, endDate string) error {
	err := r.DB.
		Where("kind = ?", models.SlotKindAssigned).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Delete(&models.ScheduleSlot{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear assigned slots in [%s, %s]: %w", startDate, endDate, err)
	}
	return nil
}

// ListApprovedRequestedInRange returns approved part-time request slots for
// dates in [startDate, endDate]
func (r *ScheduleRepository) ListApprovedRequestedInRange(startDate, endDate string) ([]models.ScheduleSlot, error) {
	var slots []models.ScheduleSlot
	err := r.DB.
		Where("kind = ?", models.SlotKindRequested).
		Where("status = ?", models.SlotStatusApproved).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approved requests in [%s, %s]: %w", startDate, endDate, err)
	}
	return slots, nil
}

// ListPendingRequestedInRange returns pending part-time request slots for
// dates in [startDate, endDate], oldest first so promotion order is stable
func (r *ScheduleRepository) ListPendingRequestedInRange(startDate, endDate string) ([]models.ScheduleSlot, error) {
	var slots []models.ScheduleSlot
	err := r.DB.
		Where("kind = ?", models.SlotKindRequested).
		Where("status = ?", models.SlotStatusPending).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC, id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests in [%s, %s]: %w", startDate, endDate, err)
	}
	return slots, nil
}

// SetStatus updates a single slot's status
func (r *ScheduleRepository) SetStatus(slotID uint, status string) error {
	result := r.DB.Model(&models.ScheduleSlot{}).
		Where("id = ?", slotID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to set slot %d status to %s: %w", slotID, status, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
