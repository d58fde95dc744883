package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/database"
	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/repository"
)

// EmployeeHandler exposes the read surface the hosting process needs to
// observe the engine: partition membership, per-table row counts, and
// schedule slots. Mutating workforce records is the job of the (external)
// request layer, not this host.
type EmployeeHandler struct {
	Employees repository.EmployeeRepositoryInterface
	Archive   repository.ArchiveRepositoryInterface
	Schedule  repository.ScheduleRepositoryInterface
	SQLDB     *sql.DB
}

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListAll()
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list employees")
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Archive.ListAll()
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list archived employees")
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// migrationStatus reports which partition holds an identity and how many
// rows of its record graph sit in each sub-table on both sides.
type migrationStatus struct {
	EmployeeID  uint             `json:"employee_id"`
	Partition   string           `json:"partition"`
	ActiveRows  map[string]int64 `json:"active_rows"`
	ArchiveRows map[string]int64 `json:"archive_rows"`
}

func (h *EmployeeHandler) GetMigrationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseEmployeeID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer")
		return
	}

	status := migrationStatus{
		EmployeeID:  id,
		ActiveRows:  make(map[string]int64),
		ArchiveRows: make(map[string]int64),
	}

	if _, err := h.Employees.GetByID(id); err == nil {
		status.Partition = "active"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to resolve partition")
		return
	}
	if status.Partition == "" {
		if _, err := h.Archive.GetByID(id); err == nil {
			status.Partition = "archive"
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "employee not found in either partition")
			return
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to resolve partition")
			return
		}
	}

	activeTables := []string{
		models.Dependent{}.TableName(),
		models.Contract{}.TableName(),
		models.AttendanceRecord{}.TableName(),
		models.WorkDocument{}.TableName(),
		models.IncidentReport{}.TableName(),
		models.Credential{}.TableName(),
	}
	archiveTables := []string{
		models.ArchivedDependent{}.TableName(),
		models.ArchivedContract{}.TableName(),
		models.ArchivedAttendanceRecord{}.TableName(),
		models.ArchivedWorkDocument{}.TableName(),
		models.ArchivedIncidentReport{}.TableName(),
		models.ArchivedCredential{}.TableName(),
	}
	for _, table := range activeTables {
		count, err := database.CountRowsForEmployee(h.SQLDB, table, id)
		if err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to count rows")
			return
		}
		status.ActiveRows[table] = count
	}
	for _, table := range archiveTables {
		count, err := database.CountRowsForEmployee(h.SQLDB, table, id)
		if err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to count rows")
			return
		}
		status.ArchiveRows[table] = count
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *EmployeeHandler) ListEmployeeSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := parseEmployeeID(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer")
		return
	}
	slots, err := h.Schedule.ListByEmployee(id)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list schedule slots")
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func parseEmployeeID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "employee_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid employee id")
	}
	return uint(id), nil
}
