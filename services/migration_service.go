package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/realtime"
)

// MigrationDirection selects which way an employee's record graph moves.
type MigrationDirection string

const (
	DirectionToArchive MigrationDirection = "toArchive"
	DirectionToActive  MigrationDirection = "toActive"
)

// ErrNotInSourceState is returned when the employee exists in neither the
// source nor the destination partition for the requested direction.
var ErrNotInSourceState = errors.New("employee not found in source state")

// NewContractInput is a freshly negotiated re-engagement supplied by the
// caller when restoring an archived employee.
type NewContractInput struct {
	ContractType  string
	StartDate     string
	EndOfContract *string
}

// MigrateOptions carries the caller-supplied overrides for a migration.
type MigrateOptions struct {
	// Reason records why the employee is being archived (toArchive only).
	Reason string

	// ReinstatementDate, when set, is stamped onto the archived row so a
	// future restoration trigger can be derived from it (toArchive only).
	ReinstatementDate *string

	// NewContract is inserted after a restore (toActive only).
	NewContract *NewContractInput
}

// MigrationResult is the outcome of one migration plus the effects to
// dispatch after commit. The core transition itself is effect-free.
type MigrationResult struct {
	EmployeeID uint
	Direction  MigrationDirection

	// NoOp is true when the employee had already been migrated and the call
	// only swept stray leftover source rows.
	NoOp bool

	Replications  []ReplicationOp
	Notifications []NotificationRequest
	Events        []realtime.Event
}

// MigrationService executes one multi-table transactional copy of an
// employee's full record graph between the active and archive partitions.
type MigrationService struct {
	DB    *gorm.DB
	Clock TriggerClock
}

func NewMigrationService(db *gorm.DB, clock TriggerClock) *MigrationService {
	return &MigrationService{DB: db, Clock: clock}
}

// doNothing makes destination inserts conflict-tolerant: identifiers are
// preserved across migration, so re-running a partially completed migration
// skips rows that already landed instead of erroring.
var doNothing = clause.OnConflict{DoNothing: true}

// Migrate moves the employee's full record graph in the given direction
// inside a single transaction. Source rows are deleted strictly after the
// destination copy succeeds; any failure rolls everything back and leaves
// the employee fully in the source state.
func (s *MigrationService) Migrate(employeeID uint, direction MigrationDirection, opts MigrateOptions) (*MigrationResult, error) {
	switch direction {
	case DirectionToArchive:
		return s.archive(employeeID, opts)
	case DirectionToActive:
		return s.restore(employeeID, opts)
	default:
		return nil, fmt.Errorf("unknown migration direction %q", direction)
	}
}

func (s *MigrationService) archive(employeeID uint, opts MigrateOptions) (*MigrationResult, error) {
	res := &MigrationResult{EmployeeID: employeeID, Direction: DirectionToArchive}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var emp models.Employee
		if err := tx.First(&emp, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// already archived: sweep any stray leftover source rows
				var archived models.ArchivedEmployee
				if derr := tx.First(&archived, employeeID).Error; derr == nil {
					res.NoOp = true
					return deleteActiveRows(tx, employeeID, false)
				}
				return ErrNotInSourceState
			}
			return err
		}

		graph, err := loadActiveGraph(tx, employeeID)
		if err != nil {
			return err
		}

		// close any still-open full-time contract before copying
		today := s.Clock.Today()
		now := time.Now()
		for i := range graph.Contracts {
			c := &graph.Contracts[i]
			if c.ContractType == models.EmploymentFullTime && c.IsOpen() {
				end := today
				c.EndOfContract = &end
				c.UpdatedAt = now
			}
		}

		reason := opts.Reason
		if reason == "" {
			reason = models.ArchivalReasonDeleted
		}

		archived := models.ArchivedEmployee(emp)
		archived.ArchivalReason = reason
		if opts.ReinstatementDate != nil {
			archived.ReinstatementDate = opts.ReinstatementDate
		}
		archived.UpdatedAt = now

		if err := tx.Clauses(doNothing).Create(&archived).Error; err != nil {
			return fmt.Errorf("failed to copy employee %d to archive: %w", employeeID, err)
		}
		res.addUpsert(models.ArchivedEmployee{}.TableName(), archived)

		if graph.Dependent != nil {
			row := models.ArchivedDependent(*graph.Dependent)
			if err := tx.Clauses(doNothing).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to copy dependent for employee %d: %w", employeeID, err)
			}
			res.addUpsert(models.ArchivedDependent{}.TableName(), row)
		}
		if len(graph.Contracts) > 0 {
			rows := make([]models.ArchivedContract, len(graph.Contracts))
			for i, c := range graph.Contracts {
				rows[i] = models.ArchivedContract(c)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to copy contracts for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.ArchivedContract{}.TableName(), row)
			}
		}
		if len(graph.Attendance) > 0 {
			rows := make([]models.ArchivedAttendanceRecord, len(graph.Attendance))
			for i, a := range graph.Attendance {
				rows[i] = models.ArchivedAttendanceRecord(a)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to copy attendance for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.ArchivedAttendanceRecord{}.TableName(), row)
			}
		}
		if len(graph.Documents) > 0 {
			rows := make([]models.ArchivedWorkDocument, len(graph.Documents))
			for i, d := range graph.Documents {
				rows[i] = models.ArchivedWorkDocument(d)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to copy documents for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.ArchivedWorkDocument{}.TableName(), row)
			}
		}
		if len(graph.Incidents) > 0 {
			rows := make([]models.ArchivedIncidentReport, len(graph.Incidents))
			for i, r := range graph.Incidents {
				rows[i] = models.ArchivedIncidentReport(r)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to copy incidents for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.ArchivedIncidentReport{}.TableName(), row)
			}
		}
		if graph.Credential != nil {
			row := models.ArchivedCredential(*graph.Credential)
			if err := tx.Clauses(doNothing).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to copy credential for employee %d: %w", employeeID, err)
			}
			res.addUpsert(models.ArchivedCredential{}.TableName(), row)
		}

		// deletion of source rows is strictly ordered after the copy
		if err := deleteActiveRows(tx, employeeID, true); err != nil {
			return err
		}
		res.addSourceDeletes(activeTables(), models.Employee{}.TableName(), employeeID)

		res.Notifications = append(res.Notifications, NotificationRequest{
			Kind:  NotifyDeactivated,
			Email: emp.Email,
			Name:  emp.FullName(),
		})
		res.Events = append(res.Events, realtime.NewEvent(realtime.EventEmployeeArchived, employeeID, map[string]interface{}{
			"reason": reason,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *MigrationService) restore(employeeID uint, opts MigrateOptions) (*MigrationResult, error) {
	res := &MigrationResult{EmployeeID: employeeID, Direction: DirectionToActive}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var archived models.ArchivedEmployee
		if err := tx.First(&archived, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				var emp models.Employee
				if derr := tx.First(&emp, employeeID).Error; derr == nil {
					res.NoOp = true
					return deleteArchivedRows(tx, employeeID, false)
				}
				return ErrNotInSourceState
			}
			return err
		}

		graph, err := loadArchivedGraph(tx, employeeID)
		if err != nil {
			return err
		}

		now := time.Now()
		emp := models.Employee(archived)
		emp.Status = models.StatusEmployed
		emp.EffectiveDeletionDate = nil
		emp.ReinstatementDate = nil
		emp.ArchivalReason = ""
		emp.UpdatedAt = now

		if err := tx.Clauses(doNothing).Create(&emp).Error; err != nil {
			return fmt.Errorf("failed to restore employee %d: %w", employeeID, err)
		}
		res.addUpsert(models.Employee{}.TableName(), emp)

		if graph.Dependent != nil {
			row := models.Dependent(*graph.Dependent)
			if err := tx.Clauses(doNothing).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to restore dependent for employee %d: %w", employeeID, err)
			}
			res.addUpsert(models.Dependent{}.TableName(), row)
		}
		if len(graph.Contracts) > 0 {
			rows := make([]models.Contract, len(graph.Contracts))
			for i, c := range graph.Contracts {
				rows[i] = models.Contract(c)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to restore contracts for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.Contract{}.TableName(), row)
			}
		}
		if len(graph.Attendance) > 0 {
			rows := make([]models.AttendanceRecord, len(graph.Attendance))
			for i, a := range graph.Attendance {
				rows[i] = models.AttendanceRecord(a)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to restore attendance for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.AttendanceRecord{}.TableName(), row)
			}
		}
		if len(graph.Documents) > 0 {
			rows := make([]models.WorkDocument, len(graph.Documents))
			for i, d := range graph.Documents {
				rows[i] = models.WorkDocument(d)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to restore documents for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.WorkDocument{}.TableName(), row)
			}
		}
		if len(graph.Incidents) > 0 {
			rows := make([]models.IncidentReport, len(graph.Incidents))
			for i, r := range graph.Incidents {
				rows[i] = models.IncidentReport(r)
			}
			if err := tx.Clauses(doNothing).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to restore incidents for employee %d: %w", employeeID, err)
			}
			for _, row := range rows {
				res.addUpsert(models.IncidentReport{}.TableName(), row)
			}
		}
		if graph.Credential != nil {
			row := models.Credential(*graph.Credential)
			if err := tx.Clauses(doNothing).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to restore credential for employee %d: %w", employeeID, err)
			}
			res.addUpsert(models.Credential{}.TableName(), row)
		}

		// freshly negotiated re-engagement supplied by the caller
		if opts.NewContract != nil {
			contract := models.Contract{
				EmployeeID:    employeeID,
				ContractType:  opts.NewContract.ContractType,
				StartDate:     opts.NewContract.StartDate,
				EndOfContract: opts.NewContract.EndOfContract,
			}
			if err := tx.Create(&contract).Error; err != nil {
				return fmt.Errorf("failed to insert new contract for employee %d: %w", employeeID, err)
			}
			res.addUpsert(models.Contract{}.TableName(), contract)
		}

		if err := deleteArchivedRows(tx, employeeID, true); err != nil {
			return err
		}
		res.addSourceDeletes(archivedTables(), models.ArchivedEmployee{}.TableName(), employeeID)

		res.Notifications = append(res.Notifications, NotificationRequest{
			Kind:  NotifyActivated,
			Email: emp.Email,
			Name:  emp.FullName(),
		})
		res.Events = append(res.Events, realtime.NewEvent(realtime.EventEmployeeRestored, employeeID, nil))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// activeGraph is an employee's full set of owned rows in the active
// partition, loaded with the transaction's snapshot.
type activeGraph struct {
	Dependent  *models.Dependent
	Contracts  []models.Contract
	Attendance []models.AttendanceRecord
	Documents  []models.WorkDocument
	Incidents  []models.IncidentReport
	Credential *models.Credential
}

// archivedGraph mirrors activeGraph for the archive partition.
type archivedGraph struct {
	Dependent  *models.ArchivedDependent
	Contracts  []models.ArchivedContract
	Attendance []models.ArchivedAttendanceRecord
	Documents  []models.ArchivedWorkDocument
	Incidents  []models.ArchivedIncidentReport
	Credential *models.ArchivedCredential
}

func loadActiveGraph(tx *gorm.DB, employeeID uint) (*activeGraph, error) {
	g := &activeGraph{}
	var dependent models.Dependent
	err := tx.Where("employee_id = ?", employeeID).First(&dependent).Error
	if err == nil {
		g.Dependent = &dependent
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load dependent for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to load contracts for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Attendance).Error; err != nil {
		return nil, fmt.Errorf("failed to load attendance for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Documents).Error; err != nil {
		return nil, fmt.Errorf("failed to load documents for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Incidents).Error; err != nil {
		return nil, fmt.Errorf("failed to load incidents for employee %d: %w", employeeID, err)
	}
	var credential models.Credential
	err = tx.Where("employee_id = ?", employeeID).First(&credential).Error
	if err == nil {
		g.Credential = &credential
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load credential for employee %d: %w", employeeID, err)
	}
	return g, nil
}

func loadArchivedGraph(tx *gorm.DB, employeeID uint) (*archivedGraph, error) {
	g := &archivedGraph{}
	var dependent models.ArchivedDependent
	err := tx.Where("employee_id = ?", employeeID).First(&dependent).Error
	if err == nil {
		g.Dependent = &dependent
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load archived dependent for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to load archived contracts for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Attendance).Error; err != nil {
		return nil, fmt.Errorf("failed to load archived attendance for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Documents).Error; err != nil {
		return nil, fmt.Errorf("failed to load archived documents for employee %d: %w", employeeID, err)
	}
	if err := tx.Where("employee_id = ?", employeeID).Find(&g.Incidents).Error; err != nil {
		return nil, fmt.Errorf("failed to load archived incidents for employee %d: %w", employeeID, err)
	}
	var credential models.ArchivedCredential
	err = tx.Where("employee_id = ?", employeeID).First(&credential).Error
	if err == nil {
		g.Credential = &credential
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load archived credential for employee %d: %w", employeeID, err)
	}
	return g, nil
}

func deleteActiveRows(tx *gorm.DB, employeeID uint, includeEmployee bool) error {
	subTables := []interface{}{
		&models.Dependent{},
		&models.Contract{},
		&models.AttendanceRecord{},
		&models.WorkDocument{},
		&models.IncidentReport{},
		&models.Credential{},
	}
	for _, m := range subTables {
		if err := tx.Where("employee_id = ?", employeeID).Delete(m).Error; err != nil {
			return fmt.Errorf("failed to delete active rows for employee %d: %w", employeeID, err)
		}
	}
	if includeEmployee {
		if err := tx.Delete(&models.Employee{}, employeeID).Error; err != nil {
			return fmt.Errorf("failed to delete active employee %d: %w", employeeID, err)
		}
	}
	return nil
}

func deleteArchivedRows(tx *gorm.DB, employeeID uint, includeEmployee bool) error {
	subTables := []interface{}{
		&models.ArchivedDependent{},
		&models.ArchivedContract{},
		&models.ArchivedAttendanceRecord{},
		&models.ArchivedWorkDocument{},
		&models.ArchivedIncidentReport{},
		&models.ArchivedCredential{},
	}
	for _, m := range subTables {
		if err := tx.Where("employee_id = ?", employeeID).Delete(m).Error; err != nil {
			return fmt.Errorf("failed to delete archived rows for employee %d: %w", employeeID, err)
		}
	}
	if includeEmployee {
		if err := tx.Delete(&models.ArchivedEmployee{}, employeeID).Error; err != nil {
			return fmt.Errorf("failed to delete archived employee %d: %w", employeeID, err)
		}
	}
	return nil
}

func activeTables() []string {
	return []string{
		models.Dependent{}.TableName(),
		models.Contract{}.TableName(),
		models.AttendanceRecord{}.TableName(),
		models.WorkDocument{}.TableName(),
		models.IncidentReport{}.TableName(),
		models.Credential{}.TableName(),
	}
}

func archivedTables() []string {
	return []string{
		models.ArchivedDependent{}.TableName(),
		models.ArchivedContract{}.TableName(),
		models.ArchivedAttendanceRecord{}.TableName(),
		models.ArchivedWorkDocument{}.TableName(),
		models.ArchivedIncidentReport{}.TableName(),
		models.ArchivedCredential{}.TableName(),
	}
}

func (r *MigrationResult) addUpsert(table string, row interface{}) {
	r.Replications = append(r.Replications, ReplicationOp{
		Op:          ReplicationUpsert,
		Table:       table,
		Row:         row,
		ConflictKey: "id",
	})
}

func (r *MigrationResult) addSourceDeletes(subTables []string, employeeTable string, employeeID uint) {
	for _, table := range subTables {
		r.Replications = append(r.Replications, ReplicationOp{
			Op:    ReplicationDelete,
			Table: table,
			Key:   "employee_id",
			Value: employeeID,
		})
	}
	r.Replications = append(r.Replications, ReplicationOp{
		Op:    ReplicationDelete,
		Table: employeeTable,
		Key:   "id",
		Value: employeeID,
	})
}
