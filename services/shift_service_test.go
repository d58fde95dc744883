package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/repository"
)

var planDays = []string{
	"2031-05-12", "2031-05-13", "2031-05-14", "2031-05-15",
	"2031-05-16", "2031-05-17", "2031-05-18",
}

func daysByEmployee(plan []PlannedShift) map[uint]int {
	counts := make(map[uint]int)
	for _, s := range plan {
		counts[s.EmployeeID]++
	}
	return counts
}

func daysBySlotEmployee(slots []models.ScheduleSlot) map[uint]int {
	counts := make(map[uint]int)
	for _, s := range slots {
		counts[s.EmployeeID]++
	}
	return counts
}

func TestPlanWeek(t *testing.T) {
	t.Run("empty candidate set yields no plan", func(t *testing.T) {
		require.Nil(t, PlanWeek(planDays, nil))
	})

	t.Run("covers every day and alternates windows", func(t *testing.T) {
		candidates := []Candidate{
			{EmployeeID: 1},
			{EmployeeID: 2},
			{EmployeeID: 3},
		}
		plan := PlanWeek(planDays, candidates)
		require.Len(t, plan, 7)

		covered := make(map[string]ShiftWindow)
		for _, s := range plan {
			covered[s.Date] = s.Window
		}
		for i, day := range planDays {
			window, ok := covered[day]
			require.True(t, ok, "day %s uncovered", day)
			if i%2 == 0 {
				require.Equal(t, WindowOpening.Name, window.Name)
			} else {
				require.Equal(t, WindowClosing.Name, window.Name)
			}
		}
	})

	t.Run("prefers the lowest fairness score", func(t *testing.T) {
		candidates := []Candidate{
			{EmployeeID: 1, HistoryMinutes: 4000},
			{EmployeeID: 2, HistoryMinutes: 0},
			{EmployeeID: 3, HistoryMinutes: 4000},
		}
		plan := PlanWeek(planDays, candidates)

		counts := daysByEmployee(plan)
		require.Equal(t, 5, counts[2], "low-history candidate should carry the cap-limited maximum")
		require.Equal(t, 7, counts[1]+counts[2]+counts[3])
	})

	t.Run("no candidate exceeds five days without backfill pressure", func(t *testing.T) {
		candidates := []Candidate{
			{EmployeeID: 1},
			{EmployeeID: 2},
		}
		plan := PlanWeek(planDays, candidates)
		require.Len(t, plan, 7)
		for id, n := range daysByEmployee(plan) {
			require.LessOrEqual(t, n, maxAssignedDays, "employee %d over the day cap", id)
		}
	})

	t.Run("backfill guarantees coverage past the cap", func(t *testing.T) {
		candidates := []Candidate{{EmployeeID: 9}}
		plan := PlanWeek(planDays, candidates)
		require.Len(t, plan, 7)

		backfilled := 0
		for _, s := range plan {
			require.Equal(t, uint(9), s.EmployeeID)
			if s.Backfilled {
				backfilled++
			}
		}
		require.Equal(t, 2, backfilled)
	})

	t.Run("ties break by candidate order, deterministically", func(t *testing.T) {
		candidates := []Candidate{
			{EmployeeID: 4},
			{EmployeeID: 7},
		}
		first := PlanWeek(planDays, candidates)
		second := PlanWeek(planDays, candidates)
		require.Equal(t, first, second)
		require.Equal(t, uint(4), first[0].EmployeeID, "first day goes to the earliest candidate on a tie")
	})
}

func TestShiftServiceRun(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	loc := testLocation(t)

	employeeRepo := repository.NewEmployeeRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	svc := NewShiftService(employeeRepo, scheduleRepo, sqlDB, loc, 49, testDispatcher())

	seed := []models.Employee{
		{FirstName: "Aiko", LastName: "Sato", Email: "aiko@example.com", EmploymentType: models.EmploymentFullTime, Status: models.StatusEmployed},
		{FirstName: "Ben", LastName: "Mori", Email: "ben@example.com", EmploymentType: models.EmploymentFullTime, Status: models.StatusEmployed},
		{FirstName: "Chie", LastName: "Endo", Email: "chie@example.com", EmploymentType: models.EmploymentPartTime, Status: models.StatusEmployed},
		{FirstName: "Dai", LastName: "Kubo", Email: "dai@example.com", EmploymentType: models.EmploymentFullTime, Status: models.StatusResigned},
	}
	for i := range seed {
		require.NoError(t, employeeRepo.Create(&seed[i]))
	}

	now := time.Date(2031, 5, 7, 12, 0, 0, 0, loc) // Wednesday
	require.NoError(t, svc.Run(now))

	var slots []models.ScheduleSlot
	require.NoError(t, db.Where("kind = ?", models.SlotKindAssigned).Find(&slots).Error)
	require.Len(t, slots, 7, "every day of the target week gets coverage")

	for _, slot := range slots {
		require.Equal(t, models.SlotStatusApproved, slot.Status)
		require.Contains(t, []uint{seed[0].ID, seed[1].ID}, slot.EmployeeID,
			"only full-time non-terminated staff are assigned")
	}

	t.Run("re-run is idempotent", func(t *testing.T) {
		require.NoError(t, svc.Run(now))
		var again []models.ScheduleSlot
		require.NoError(t, db.Where("kind = ?", models.SlotKindAssigned).Find(&again).Error)
		require.Len(t, again, 7)
	})

	t.Run("fairness history shifts assignments away from busy staff", func(t *testing.T) {
		// pile approved history onto the first employee
		for i := 0; i < 10; i++ {
			slot := models.ScheduleSlot{
				EmployeeID:      seed[0].ID,
				Date:            DaysAgo(now, loc, i+1),
				StartTime:       WindowOpening.StartTime,
				EndTime:         WindowOpening.EndTime,
				DurationMinutes: WindowOpening.Minutes,
				Status:          models.SlotStatusApproved,
				Kind:            models.SlotKindRequested,
			}
			require.NoError(t, scheduleRepo.Create(&slot))
		}

		require.NoError(t, svc.Run(now))
		var replanned []models.ScheduleSlot
		require.NoError(t, db.
			Where("kind = ? AND date >= ?", models.SlotKindAssigned, "2031-05-12").
			Find(&replanned).Error)

		counts := daysBySlotEmployee(replanned)
		require.Greater(t, counts[seed[1].ID], counts[seed[0].ID],
			"employee with heavy history should receive fewer days")
	})
}
