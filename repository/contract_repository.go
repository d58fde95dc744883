package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/models"
)

// ContractRepository handles database operations for contracts
type ContractRepository struct {
	DB *gorm.DB
}

// NewContractRepository creates a new instance of ContractRepository
func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{DB: db}
}

// Create creates a new contract record in the database
func (r *ContractRepository) Create(contract *models.Contract) error {
	err := r.DB.Create(contract).Error
	if err != nil {
		return fmt.Errorf("failed to create contract for employee ID %d: %w", contract.EmployeeID, err)
	}
	return nil
}

// ListByEmployee retrieves all contracts for a given employee ID
func (r *ContractRepository) ListByEmployee(employeeID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.DB.Where("employee_id = ?", employeeID).Order("start_date ASC").Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts for employee ID %d: %w", employeeID, err)
	}
	return contracts, nil
}

// AuthoritativeClosedFullTime returns the most-recently-updated full-time
// contract with an end date for the employee. Used for deletion-trigger
// computation when no explicit deletion date is set.
func (r *ContractRepository) AuthoritativeClosedFullTime(employeeID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.DB.
		Where("employee_id = ?", employeeID).
		Where("contract_type = ?", models.EmploymentFullTime).
		Where("end_of_contract IS NOT NULL").
		Order("updated_at DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}
