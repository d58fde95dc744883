package workers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/torikura/rosterbackend/database"
	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/notifications"
	"github.com/torikura/rosterbackend/replication"
	"github.com/torikura/rosterbackend/repository"
	"github.com/torikura/rosterbackend/services"
)

// recordingMailer captures scheduled-transition notices for assertions.
type recordingMailer struct {
	scheduled []string
}

func (m *recordingMailer) SendDeactivated(email, name string) error { return nil }
func (m *recordingMailer) SendActivated(email, name string) error   { return nil }
func (m *recordingMailer) SendScheduled(email, name string, when time.Time) error {
	m.scheduled = append(m.scheduled, email)
	return nil
}

func newTestService(t *testing.T, mailer notifications.Dispatcher) (*services.LifecycleService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrateModels(db))

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	clock := services.TriggerClock{Location: loc, TriggerHour: 10}
	dispatcher := services.NewEffectDispatcher(replication.NoopSink{}, mailer, nil)

	svc := services.NewLifecycleService(
		repository.NewEmployeeRepository(db),
		repository.NewArchiveRepository(db),
		repository.NewContractRepository(db),
		services.NewMigrationService(db, clock),
		clock,
		dispatcher,
	)
	return svc, db
}

func TestScheduleTransitionPastRunsImmediately(t *testing.T) {
	svc, db := newTestService(t, notifications.LogDispatcher{})
	w := NewLifecycleWorker(svc, time.Minute)
	defer w.Stop()

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	emp := models.Employee{
		FirstName: "Yuki", LastName: "Hara", Email: "yuki@example.com",
		EmploymentType: models.EmploymentFullTime, Status: models.StatusResigned,
		EffectiveDeletionDate: &yesterday,
	}
	require.NoError(t, db.Create(&emp).Error)

	err := w.ScheduleTransition(services.PendingTransition{
		EmployeeID: emp.ID,
		Direction:  services.DirectionToArchive,
		At:         time.Now().Add(-time.Hour),
		Reason:     models.ArchivalReasonDeleted,
	})
	require.NoError(t, err)

	var archived models.ArchivedEmployee
	require.NoError(t, db.First(&archived, emp.ID).Error, "past trigger migrates synchronously")
	require.Empty(t, w.Timers, "no deferred timer for an immediate transition")
}

func TestScheduleTransitionFutureRegistersTimer(t *testing.T) {
	svc, _ := newTestService(t, notifications.LogDispatcher{})
	w := NewLifecycleWorker(svc, time.Minute)

	p := services.PendingTransition{
		EmployeeID: 42,
		Direction:  services.DirectionToArchive,
		At:         time.Now().Add(time.Hour),
	}
	require.NoError(t, w.ScheduleTransition(p))

	w.Mutex.Lock()
	require.Len(t, w.Timers, 1)
	w.Mutex.Unlock()

	// re-registering the same transition supersedes, never stacks
	require.NoError(t, w.ScheduleTransition(p))
	w.Mutex.Lock()
	require.Len(t, w.Timers, 1)
	w.Mutex.Unlock()

	w.Stop()
	require.Empty(t, w.Timers, "stop cancels all deferred timers")
}

func TestStartupRederivationDoesNotResendNotices(t *testing.T) {
	mailer := &recordingMailer{}
	svc, db := newTestService(t, mailer)
	w := NewLifecycleWorker(svc, time.Minute)
	defer w.Stop()

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	emp := models.Employee{
		FirstName: "Mio", LastName: "Sato", Email: "mio@example.com",
		EmploymentType: models.EmploymentFullTime, Status: models.StatusResigned,
		EffectiveDeletionDate: &tomorrow,
	}
	require.NoError(t, db.Create(&emp).Error)

	require.NoError(t, w.InitializeLifecycleSchedules())
	w.Mutex.Lock()
	require.Len(t, w.Timers, 1, "future transition re-registered from the store")
	w.Mutex.Unlock()
	require.Empty(t, mailer.scheduled, "a restart must not resend notices")

	require.NoError(t, w.ScheduleTransition(services.PendingTransition{
		EmployeeID: emp.ID,
		Email:      emp.Email,
		Name:       emp.FullName(),
		Direction:  services.DirectionToArchive,
		At:         time.Now().Add(time.Hour),
	}))
	require.Equal(t, []string{"mio@example.com"}, mailer.scheduled, "notice goes out on the administrative act")
}

func TestLifecycleWorkerStopRightAfterStart(t *testing.T) {
	svc, _ := newTestService(t, notifications.LogDispatcher{})
	w := NewLifecycleWorker(svc, time.Hour)

	w.Start()
	w.Stop()
}
