package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/models"
)

// EmployeeRepository handles database operations for active-set employees
type EmployeeRepository struct {
	DB *gorm.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

// Create creates a new active employee record in the database
func (r *EmployeeRepository) Create(employee *models.Employee) error {
	err := r.DB.Create(employee).Error
	if err != nil {
		return fmt.Errorf("failed to create employee %s: %w", employee.Email, err)
	}
	return nil
}

// GetByID retrieves an active employee by their ID
func (r *EmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.DB.First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListAll retrieves all active employees, ordered by last name
func (r *EmployeeRepository) ListAll() ([]models.Employee, error) {
	var employees []models.Employee
	err := r.DB.Order("last_name ASC, first_name ASC").Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Update updates an existing employee's details
func (r *EmployeeRepository) Update(employee *models.Employee) error {
	result := r.DB.Save(employee)
	if result.Error != nil {
		return fmt.Errorf("failed to update employee ID %d: %w", employee.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDeletionCandidates returns active employees not shielded by a
// protected status, ordered by ID for deterministic sweep passes
func (r *EmployeeRepository) ListDeletionCandidates() ([]models.Employee, error) {
	var employees []models.Employee
	err := r.DB.
		Where("status NOT IN ?", []string{models.StatusEmployed, models.StatusProbationary}).
		Order("id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deletion candidates: %w", err)
	}
	return employees, nil
}

// ListProtectedFullTime returns full-time employees whose status keeps them
// in active service, ordered by ID for deterministic assignment iteration
func (r *EmployeeRepository) ListProtectedFullTime() ([]models.Employee, error) {
	var employees []models.Employee
	err := r.DB.
		Where("employment_type = ?", models.EmploymentFullTime).
		Where("status IN ?", []string{models.StatusEmployed, models.StatusProbationary}).
		Order("id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list full-time staff: %w", err)
	}
	return employees, nil
}
