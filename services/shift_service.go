package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/torikura/rosterbackend/database"
	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/realtime"
	"github.com/torikura/rosterbackend/repository"
)

// maxAssignedDays is the soft cap on distinct assigned days per candidate in
// one planning pass, guaranteeing two days off. The backfill pass ignores it.
const maxAssignedDays = 5

// Candidate is one full-time staff member eligible for assignment, with
// their fairness history over the trailing window.
type Candidate struct {
	EmployeeID     uint
	Email          string
	Name           string
	HistoryMinutes int
}

// PlannedShift is one day's full-time coverage produced by PlanWeek.
type PlannedShift struct {
	EmployeeID uint
	Date       string
	Window     ShiftWindow
	Backfilled bool
}

// PlanWeek computes a fairness-ranked one-person-per-day assignment over the
// given days, alternating opening and closing shifts. Candidates must be in
// stable order (ascending employee ID); ties on score resolve to the earliest
// candidate, so the plan is deterministic. Days that no capped candidate can
// cover are backfilled by the globally lowest-score candidate. The result
// covers every day unless the candidate set is empty.
func PlanWeek(days []string, candidates []Candidate) []PlannedShift {
	if len(candidates) == 0 {
		return nil
	}

	assignedMinutes := make(map[uint]int, len(candidates))
	assignedDays := make(map[uint]int, len(candidates))
	score := func(c Candidate) int {
		return c.HistoryMinutes + assignedMinutes[c.EmployeeID]
	}

	var plan []PlannedShift
	var unfilled []int

	for i, day := range days {
		window := windowForDay(i)
		bestIdx := -1
		for j, c := range candidates {
			if assignedDays[c.EmployeeID] >= maxAssignedDays {
				continue
			}
			if bestIdx < 0 || score(c) < score(candidates[bestIdx]) {
				bestIdx = j
			}
		}
		if bestIdx < 0 {
			unfilled = append(unfilled, i)
			continue
		}
		chosen := candidates[bestIdx]
		plan = append(plan, PlannedShift{EmployeeID: chosen.EmployeeID, Date: day, Window: window})
		assignedMinutes[chosen.EmployeeID] += window.Minutes
		assignedDays[chosen.EmployeeID]++
	}

	// backfill: the day-off cap yields to full coverage
	for _, i := range unfilled {
		window := windowForDay(i)
		bestIdx := 0
		for j := range candidates {
			if score(candidates[j]) < score(candidates[bestIdx]) {
				bestIdx = j
			}
		}
		chosen := candidates[bestIdx]
		plan = append(plan, PlannedShift{EmployeeID: chosen.EmployeeID, Date: days[i], Window: window, Backfilled: true})
		assignedMinutes[chosen.EmployeeID] += window.Minutes
		assignedDays[chosen.EmployeeID]++
	}

	return plan
}

// ShiftService runs the recurring full-time assignment job for the next
// calendar week.
type ShiftService struct {
	Employees  repository.EmployeeRepositoryInterface
	Schedule   repository.ScheduleRepositoryInterface
	SQLDB      *sql.DB
	Location   *time.Location
	WindowDays int
	Dispatcher *EffectDispatcher
}

func NewShiftService(
	employees repository.EmployeeRepositoryInterface,
	schedule repository.ScheduleRepositoryInterface,
	sqlDB *sql.DB,
	loc *time.Location,
	windowDays int,
	dispatcher *EffectDispatcher,
) *ShiftService {
	return &ShiftService{
		Employees:  employees,
		Schedule:   schedule,
		SQLDB:      sqlDB,
		Location:   loc,
		WindowDays: windowDays,
		Dispatcher: dispatcher,
	}
}

// Run clears any previously auto-approved assignment for the target week,
// loads the candidate set with its fairness history, plans the week, and
// persists the plan. Safe to re-run: the clear step makes it idempotent.
func (s *ShiftService) Run(now time.Time) error {
	days := NextWeekDays(now, s.Location)
	startDate, endDate := days[0], days[len(days)-1]

	if err := s.Schedule.ClearAssignedInRange(startDate, endDate); err != nil {
		return err
	}

	staff, err := s.Employees.ListProtectedFullTime()
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		log.Printf("shifts: no eligible full-time staff, week of %s left unplanned", startDate)
		return nil
	}

	today := now.In(s.Location).Format(dateLayout)
	history, err := database.ApprovedMinutesSince(s.SQLDB, DaysAgo(now, s.Location, s.WindowDays), today)
	if err != nil {
		return err
	}

	candidates := make([]Candidate, len(staff))
	for i, emp := range staff {
		candidates[i] = Candidate{
			EmployeeID:     emp.ID,
			Email:          emp.Email,
			Name:           emp.FullName(),
			HistoryMinutes: history[emp.ID],
		}
	}

	plan := PlanWeek(days, candidates)
	for _, shift := range plan {
		slot := models.ScheduleSlot{
			EmployeeID:      shift.EmployeeID,
			Date:            shift.Date,
			StartTime:       shift.Window.StartTime,
			EndTime:         shift.Window.EndTime,
			DurationMinutes: shift.Window.Minutes,
			Status:          models.SlotStatusApproved,
			Kind:            models.SlotKindAssigned,
		}
		if err := s.Schedule.Create(&slot); err != nil {
			return fmt.Errorf("failed to persist planned shift on %s: %w", shift.Date, err)
		}
	}
	log.Printf("shifts: planned week %s..%s with %d assignment(s)", startDate, endDate, len(plan))

	s.dispatchPlanned(plan, candidates, startDate)
	return nil
}

// dispatchPlanned notifies each assigned candidate once, with their first
// shift instant, and broadcasts the week's outcome.
func (s *ShiftService) dispatchPlanned(plan []PlannedShift, candidates []Candidate, weekStart string) {
	byID := make(map[uint]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.EmployeeID] = c
	}

	var notes []NotificationRequest
	notified := make(map[uint]bool)
	for _, shift := range plan {
		if notified[shift.EmployeeID] {
			continue
		}
		notified[shift.EmployeeID] = true
		c := byID[shift.EmployeeID]
		if when, err := time.ParseInLocation(dateLayout+" 15:04", shift.Date+" "+shift.Window.StartTime, s.Location); err == nil {
			w := when
			notes = append(notes, NotificationRequest{Kind: NotifyScheduled, Email: c.Email, Name: c.Name, When: &w})
		}
	}

	events := []realtime.Event{realtime.NewEvent(realtime.EventShiftsAssigned, 0, map[string]interface{}{
		"week_start":  weekStart,
		"assignments": len(plan),
	})}
	s.Dispatcher.Dispatch(nil, notes, events)
}
