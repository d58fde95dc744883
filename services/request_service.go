package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/torikura/rosterbackend/database"
	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/realtime"
	"github.com/torikura/rosterbackend/repository"
)

// RequestOutcome is the resolution of one finalization pass: which pending
// requests to promote and which to reject.
type RequestOutcome struct {
	ApproveIDs []uint
	RejectIDs  []uint
}

// ResolveRequests decides pending part-time requests against per-slot
// exclusivity: for each (date, window) with no approved occupant, the oldest
// pending request wins and every remaining sibling is rejected. The pending
// slice must be ordered oldest first.
func ResolveRequests(approved, pending []models.ScheduleSlot) RequestOutcome {
	occupied := make(map[string]bool, len(approved))
	for _, slot := range approved {
		occupied[slot.Date+"|"+slot.StartTime] = true
	}

	var outcome RequestOutcome
	for _, slot := range pending {
		key := slot.Date + "|" + slot.StartTime
		if occupied[key] {
			outcome.RejectIDs = append(outcome.RejectIDs, slot.ID)
			continue
		}
		occupied[key] = true
		outcome.ApproveIDs = append(outcome.ApproveIDs, slot.ID)
	}
	return outcome
}

// RequestService finalizes pending part-time shift requests for the target
// week and purges stale terminal records.
type RequestService struct {
	Schedule      repository.ScheduleRepositoryInterface
	SQLDB         *sql.DB
	Location      *time.Location
	RetentionDays int
	Dispatcher    *EffectDispatcher
}

func NewRequestService(
	schedule repository.ScheduleRepositoryInterface,
	sqlDB *sql.DB,
	loc *time.Location,
	retentionDays int,
	dispatcher *EffectDispatcher,
) *RequestService {
	return &RequestService{
		Schedule:      schedule,
		SQLDB:         sqlDB,
		Location:      loc,
		RetentionDays: retentionDays,
		Dispatcher:    dispatcher,
	}
}

// Finalize resolves every pending request in the next calendar week into an
// approved or rejected outcome. Promotion only happens into an empty
// (date, window) slot, so at most one approved request ever occupies one.
func (s *RequestService) Finalize(now time.Time) error {
	days := NextWeekDays(now, s.Location)
	startDate, endDate := days[0], days[len(days)-1]

	approved, err := s.Schedule.ListApprovedRequestedInRange(startDate, endDate)
	if err != nil {
		return err
	}
	pending, err := s.Schedule.ListPendingRequestedInRange(startDate, endDate)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	outcome := ResolveRequests(approved, pending)

	byID := make(map[uint]models.ScheduleSlot, len(pending))
	for _, slot := range pending {
		byID[slot.ID] = slot
	}

	var events []realtime.Event
	for _, id := range outcome.ApproveIDs {
		if err := s.Schedule.SetStatus(id, models.SlotStatusApproved); err != nil {
			return err
		}
		slot := byID[id]
		events = append(events, realtime.NewEvent(realtime.EventRequestsFinalized, slot.EmployeeID, map[string]interface{}{
			"date":    slot.Date,
			"window":  slot.StartTime,
			"outcome": models.SlotStatusApproved,
		}))
	}
	for _, id := range outcome.RejectIDs {
		if err := s.Schedule.SetStatus(id, models.SlotStatusRejected); err != nil {
			return err
		}
		slot := byID[id]
		events = append(events, realtime.NewEvent(realtime.EventRequestsFinalized, slot.EmployeeID, map[string]interface{}{
			"date":    slot.Date,
			"window":  slot.StartTime,
			"outcome": models.SlotStatusRejected,
		}))
	}

	log.Printf("requests: finalized week %s..%s (%d approved, %d rejected)",
		startDate, endDate, len(outcome.ApproveIDs), len(outcome.RejectIDs))
	s.Dispatcher.Dispatch(nil, nil, events)
	return nil
}

// Cleanup removes rejected and still-pending request rows older than the
// retention window.
func (s *RequestService) Cleanup(now time.Time) error {
	cutoff := now.AddDate(0, 0, -s.RetentionDays)
	removed, err := database.PurgeStaleRequests(s.SQLDB, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("requests: purged %d stale record(s) older than %d days", removed, s.RetentionDays)
	}
	return nil
}
