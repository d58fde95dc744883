package repository

import (
	"github.com/torikura/rosterbackend/models"
)

// EmployeeRepositoryInterface defines the methods for active-set employee
// data operations
type EmployeeRepositoryInterface interface {
	Create(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	ListAll() ([]models.Employee, error)
	Update(employee *models.Employee) error

	// ListDeletionCandidates returns active employees whose status does not
	// protect them from archival scheduling.
	ListDeletionCandidates() ([]models.Employee, error)

	// ListProtectedFullTime returns full-time staff eligible for fairness
	// shift assignment.
	ListProtectedFullTime() ([]models.Employee, error)
}

// ArchiveRepositoryInterface defines the methods for archive-set employee
// data operations
type ArchiveRepositoryInterface interface {
	GetByID(id uint) (*models.ArchivedEmployee, error)
	ListAll() ([]models.ArchivedEmployee, error)

	// ListRestorationCandidates returns archived employees carrying a
	// reinstatement date.
	ListRestorationCandidates() ([]models.ArchivedEmployee, error)
}

// ContractRepositoryInterface defines the methods for contract data operations
type ContractRepositoryInterface interface {
	Create(contract *models.Contract) error
	ListByEmployee(employeeID uint) ([]models.Contract, error)

	// AuthoritativeClosedFullTime returns the most-recently-updated full-time
	// contract with an end date for the employee, or gorm.ErrRecordNotFound.
	AuthoritativeClosedFullTime(employeeID uint) (*models.Contract, error)
}

// ScheduleRepositoryInterface defines the methods for schedule slot data
// operations
type ScheduleRepositoryInterface interface {
	Create(slot *models.ScheduleSlot) error
	ListByEmployee(employeeID uint) ([]models.ScheduleSlot, error)

	// ClearAssignedInRange removes planner-produced slots for dates in
	// [startDate, endDate], making a planning re-run idempotent.
	ClearAssignedInRange(startDate, endDate string) error

	// ListApprovedRequestedInRange returns approved part-time request slots
	// for dates in [startDate, endDate].
	ListApprovedRequestedInRange(startDate, endDate string) ([]models.ScheduleSlot, error)

	// ListPendingRequestedInRange returns pending part-time request slots for
	// dates in [startDate, endDate], oldest first.
	ListPendingRequestedInRange(startDate, endDate string) ([]models.ScheduleSlot, error)

	SetStatus(slotID uint, status string) error
}
