package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/models"
)

// ArchiveRepository handles database operations for archive-set employees
type ArchiveRepository struct {
	DB *gorm.DB
}

// NewArchiveRepository creates a new instance of ArchiveRepository
func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{DB: db}
}

// GetByID retrieves an archived employee by their ID
func (r *ArchiveRepository) GetByID(id uint) (*models.ArchivedEmployee, error) {
	var employee models.ArchivedEmployee
	err := r.DB.First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListAll retrieves all archived employees, ordered by last name
func (r *ArchiveRepository) ListAll() ([]models.ArchivedEmployee, error) {
	var employees []models.ArchivedEmployee
	err := r.DB.Order("last_name ASC, first_name ASC").Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list archived employees: %w", err)
	}
	return employees, nil
}

// ListRestorationCandidates returns archived employees carrying a
// reinstatement date, ordered by ID for deterministic sweep passes
func (r *ArchiveRepository) ListRestorationCandidates() ([]models.ArchivedEmployee, error) {
	var employees []models.ArchivedEmployee
	err := r.DB.
		Where("reinstatement_date IS NOT NULL").
		Order("id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list restoration candidates: %w", err)
	}
	return employees, nil
}
