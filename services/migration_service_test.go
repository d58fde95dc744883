package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/models"
)

// seedFullGraph creates one active employee with every kind of owned row.
func seedFullGraph(t *testing.T, db *gorm.DB, email string, status string, deletionDate *string) *models.Employee {
	t.Helper()

	emp := models.Employee{
		FirstName:             "Hana",
		LastName:              "Ito",
		Email:                 email,
		Phone:                 "080-0000-0000",
		EmploymentType:        models.EmploymentFullTime,
		Status:                status,
		EffectiveDeletionDate: deletionDate,
	}
	require.NoError(t, db.Create(&emp).Error)

	require.NoError(t, db.Create(&models.Dependent{
		EmployeeID: emp.ID, FullName: "Jiro Ito", Relationship: "spouse", Phone: "080-1111-1111",
	}).Error)

	openEnd := (*string)(nil)
	closedEnd := "2030-03-31"
	require.NoError(t, db.Create(&models.Contract{
		EmployeeID: emp.ID, ContractType: models.EmploymentFullTime, StartDate: "2028-04-01", EndOfContract: openEnd,
	}).Error)
	require.NoError(t, db.Create(&models.Contract{
		EmployeeID: emp.ID, ContractType: models.EmploymentPartTime, StartDate: "2027-04-01", EndOfContract: &closedEnd,
	}).Error)

	for _, date := range []string{"2031-04-01", "2031-04-02"} {
		require.NoError(t, db.Create(&models.AttendanceRecord{
			EmployeeID: emp.ID, Date: date, ClockIn: "09:00", ClockOut: "18:00",
		}).Error)
	}

	require.NoError(t, db.Create(&models.WorkDocument{
		EmployeeID: emp.ID, Title: "employment contract", StoragePath: "/docs/contract.pdf",
	}).Error)
	require.NoError(t, db.Create(&models.IncidentReport{
		EmployeeID: emp.ID, Date: "2030-11-02", Description: "late delivery", Severity: "low",
	}).Error)

	cred := models.Credential{EmployeeID: emp.ID, Username: email}
	require.NoError(t, cred.SetPassword("initial-password"))
	require.NoError(t, db.Create(&cred).Error)

	return &emp
}

type graphCounts struct {
	Employees, Dependents, Contracts, Attendance, Documents, Incidents, Credentials int64
}

func countSide(t *testing.T, db *gorm.DB, archived bool, employeeID uint) graphCounts {
	t.Helper()
	var c graphCounts
	count := func(model interface{}, byEmployee bool, dst *int64) {
		q := db.Model(model)
		if byEmployee {
			q = q.Where("employee_id = ?", employeeID)
		} else {
			q = q.Where("id = ?", employeeID)
		}
		require.NoError(t, q.Count(dst).Error)
	}
	if archived {
		count(&models.ArchivedEmployee{}, false, &c.Employees)
		count(&models.ArchivedDependent{}, true, &c.Dependents)
		count(&models.ArchivedContract{}, true, &c.Contracts)
		count(&models.ArchivedAttendanceRecord{}, true, &c.Attendance)
		count(&models.ArchivedWorkDocument{}, true, &c.Documents)
		count(&models.ArchivedIncidentReport{}, true, &c.Incidents)
		count(&models.ArchivedCredential{}, true, &c.Credentials)
	} else {
		count(&models.Employee{}, false, &c.Employees)
		count(&models.Dependent{}, true, &c.Dependents)
		count(&models.Contract{}, true, &c.Contracts)
		count(&models.AttendanceRecord{}, true, &c.Attendance)
		count(&models.WorkDocument{}, true, &c.Documents)
		count(&models.IncidentReport{}, true, &c.Incidents)
		count(&models.Credential{}, true, &c.Credentials)
	}
	return c
}

func TestMigrateToArchive(t *testing.T) {
	db := newTestDB(t)
	svc := NewMigrationService(db, testClock(t))

	yesterday := "2031-05-06"
	emp := seedFullGraph(t, db, "hana@example.com", models.StatusResigned, &yesterday)

	before := countSide(t, db, false, emp.ID)
	require.EqualValues(t, 1, before.Employees)
	require.EqualValues(t, 2, before.Contracts)

	res, err := svc.Migrate(emp.ID, DirectionToArchive, MigrateOptions{Reason: models.ArchivalReasonDeleted})
	require.NoError(t, err)
	require.False(t, res.NoOp)
	require.NotEmpty(t, res.Replications)
	require.Len(t, res.Notifications, 1)
	require.Equal(t, NotifyDeactivated, res.Notifications[0].Kind)

	after := countSide(t, db, false, emp.ID)
	require.Equal(t, graphCounts{}, after, "active partition fully vacated")

	archived := countSide(t, db, true, emp.ID)
	require.Equal(t, before, archived, "archive row counts match pre-migration active counts")

	t.Run("identity and archival reason preserved", func(t *testing.T) {
		var row models.ArchivedEmployee
		require.NoError(t, db.First(&row, emp.ID).Error)
		require.Equal(t, emp.Email, row.Email)
		require.Equal(t, models.ArchivalReasonDeleted, row.ArchivalReason)
	})

	t.Run("open full-time contract closed on the way out", func(t *testing.T) {
		var contracts []models.ArchivedContract
		require.NoError(t, db.Where("employee_id = ?", emp.ID).Find(&contracts).Error)
		for _, c := range contracts {
			require.NotNil(t, c.EndOfContract, "contract %d should be closed", c.ID)
		}
	})

	t.Run("second invocation is a no-op", func(t *testing.T) {
		res, err := svc.Migrate(emp.ID, DirectionToArchive, MigrateOptions{})
		require.NoError(t, err)
		require.True(t, res.NoOp)

		require.Equal(t, before, countSide(t, db, true, emp.ID), "row counts unchanged after repeat migration")
		require.Equal(t, graphCounts{}, countSide(t, db, false, emp.ID))
	})
}

func TestMigrateToArchiveRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewMigrationService(db, testClock(t))

	deletionDate := "2031-05-06"
	emp := seedFullGraph(t, db, "rin@example.com", models.StatusResigned, &deletionDate)
	before := countSide(t, db, false, emp.ID)

	// the credential copy is the last insert of the graph, so every earlier
	// destination write has to be unwound
	failCreatesInto(t, db, models.ArchivedCredential{}.TableName())

	_, err := svc.Migrate(emp.ID, DirectionToArchive, MigrateOptions{})
	require.Error(t, err)

	require.Equal(t, before, countSide(t, db, false, emp.ID), "source partition untouched after rollback")
	require.Equal(t, graphCounts{}, countSide(t, db, true, emp.ID), "destination left empty after rollback")
}

func TestMigrateToActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewMigrationService(db, testClock(t))

	yesterday := "2031-05-06"
	emp := seedFullGraph(t, db, "kenta@example.com", models.StatusRetired, &yesterday)
	before := countSide(t, db, false, emp.ID)

	_, err := svc.Migrate(emp.ID, DirectionToArchive, MigrateOptions{Reason: models.ArchivalReasonContractExpired})
	require.NoError(t, err)

	res, err := svc.Migrate(emp.ID, DirectionToActive, MigrateOptions{
		NewContract: &NewContractInput{
			ContractType: models.EmploymentFullTime,
			StartDate:    "2031-06-01",
		},
	})
	require.NoError(t, err)
	require.False(t, res.NoOp)
	require.Len(t, res.Notifications, 1)
	require.Equal(t, NotifyActivated, res.Notifications[0].Kind)

	require.Equal(t, graphCounts{}, countSide(t, db, true, emp.ID), "archive partition fully vacated")

	restored := countSide(t, db, false, emp.ID)
	expected := before
	expected.Contracts++ // the freshly negotiated re-engagement
	require.Equal(t, expected, restored)

	var row models.Employee
	require.NoError(t, db.First(&row, emp.ID).Error)
	require.Equal(t, models.StatusEmployed, row.Status, "restored employee returns to service")
	require.Nil(t, row.EffectiveDeletionDate)
	require.Empty(t, row.ArchivalReason)

	var fresh []models.Contract
	require.NoError(t, db.
		Where("employee_id = ? AND start_date = ?", emp.ID, "2031-06-01").
		Find(&fresh).Error)
	require.Len(t, fresh, 1)
	require.Nil(t, fresh[0].EndOfContract, "new full-time contract is open-ended")
}

func TestMigrateUnknownEmployee(t *testing.T) {
	db := newTestDB(t)
	svc := NewMigrationService(db, testClock(t))

	_, err := svc.Migrate(9999, DirectionToArchive, MigrateOptions{})
	require.ErrorIs(t, err, ErrNotInSourceState)

	_, err = svc.Migrate(9999, DirectionToActive, MigrateOptions{})
	require.ErrorIs(t, err, ErrNotInSourceState)
}
