package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/torikura/rosterbackend/models"
	"github.com/torikura/rosterbackend/realtime"
	"github.com/torikura/rosterbackend/repository"
)

// PendingTransition is one future migration derived from the store. Timers
// built from these are an optimization only; every sweep pass re-derives due
// work from the store, so a lost timer can never lose a transition.
type PendingTransition struct {
	EmployeeID uint
	Email      string
	Name       string
	Direction  MigrationDirection
	At         time.Time
	Reason     string
}

// LifecycleService owns the decision of when a migration must run.
type LifecycleService struct {
	Employees  repository.EmployeeRepositoryInterface
	Archive    repository.ArchiveRepositoryInterface
	Contracts  repository.ContractRepositoryInterface
	Migrator   *MigrationService
	Clock      TriggerClock
	Dispatcher *EffectDispatcher
}

func NewLifecycleService(
	employees repository.EmployeeRepositoryInterface,
	archive repository.ArchiveRepositoryInterface,
	contracts repository.ContractRepositoryInterface,
	migrator *MigrationService,
	clock TriggerClock,
	dispatcher *EffectDispatcher,
) *LifecycleService {
	return &LifecycleService{
		Employees:  employees,
		Archive:    archive,
		Contracts:  contracts,
		Migrator:   migrator,
		Clock:      clock,
		Dispatcher: dispatcher,
	}
}

// DeletionTrigger resolves the instant at which the employee becomes due for
// archival, plus the archival reason that will be recorded. Protected
// statuses and unresolvable dates yield nil (no scheduling action).
//
// An explicit administrative deletion date always wins over a contract's
// natural expiry; the contract is consulted only when no explicit date is
// set.
func (s *LifecycleService) DeletionTrigger(employee *models.Employee) (*time.Time, string) {
	if employee.IsProtected() {
		return nil, ""
	}
	if at := s.Clock.ResolveTriggerInstant(employee.EffectiveDeletionDate); at != nil {
		return at, models.ArchivalReasonDeleted
	}
	contract, err := s.Contracts.AuthoritativeClosedFullTime(employee.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("lifecycle: failed to load authoritative contract for employee %d: %v", employee.ID, err)
		}
		return nil, ""
	}
	if at := s.Clock.ResolveTriggerInstant(contract.EndOfContract); at != nil {
		return at, models.ArchivalReasonContractExpired
	}
	return nil, ""
}

// RestorationTrigger resolves the instant at which an archived employee
// becomes due for restoration, or nil.
func (s *LifecycleService) RestorationTrigger(employee *models.ArchivedEmployee) *time.Time {
	return s.Clock.ResolveTriggerInstant(employee.ReinstatementDate)
}

// ArchiveNow migrates one employee to the archive set and dispatches the
// resulting effects.
func (s *LifecycleService) ArchiveNow(employeeID uint, reason string) error {
	res, err := s.Migrator.Migrate(employeeID, DirectionToArchive, MigrateOptions{Reason: reason})
	if err != nil {
		return fmt.Errorf("archival of employee %d failed: %w", employeeID, err)
	}
	s.Dispatcher.Dispatch(res.Replications, res.Notifications, res.Events)
	return nil
}

// RestoreNow migrates one employee back to the active set, optionally
// inserting a freshly negotiated contract, and dispatches the effects.
func (s *LifecycleService) RestoreNow(employeeID uint, newContract *NewContractInput) error {
	res, err := s.Migrator.Migrate(employeeID, DirectionToActive, MigrateOptions{NewContract: newContract})
	if err != nil {
		return fmt.Errorf("restoration of employee %d failed: %w", employeeID, err)
	}
	s.Dispatcher.Dispatch(res.Replications, res.Notifications, res.Events)
	return nil
}

// Execute runs the migration a pending transition stands for.
func (s *LifecycleService) Execute(p PendingTransition) error {
	switch p.Direction {
	case DirectionToArchive:
		return s.ArchiveNow(p.EmployeeID, p.Reason)
	case DirectionToActive:
		return s.RestoreNow(p.EmployeeID, nil)
	default:
		return fmt.Errorf("unknown direction %q for employee %d", p.Direction, p.EmployeeID)
	}
}

// PendingTransitions re-derives every future transition from the store.
// Called at startup to rebuild the one-shot timer set after a restart; the
// database, not memory, is authoritative.
func (s *LifecycleService) PendingTransitions(now time.Time) ([]PendingTransition, error) {
	var pending []PendingTransition

	candidates, err := s.Employees.ListDeletionCandidates()
	if err != nil {
		return nil, fmt.Errorf("failed to derive pending deletions: %w", err)
	}
	for i := range candidates {
		emp := &candidates[i]
		at, reason := s.DeletionTrigger(emp)
		if at != nil && at.After(now) {
			pending = append(pending, PendingTransition{
				EmployeeID: emp.ID,
				Email:      emp.Email,
				Name:       emp.FullName(),
				Direction:  DirectionToArchive,
				At:         *at,
				Reason:     reason,
			})
		}
	}

	archived, err := s.Archive.ListRestorationCandidates()
	if err != nil {
		return nil, fmt.Errorf("failed to derive pending restorations: %w", err)
	}
	for i := range archived {
		emp := &archived[i]
		if at := s.RestorationTrigger(emp); at != nil && at.After(now) {
			pending = append(pending, PendingTransition{
				EmployeeID: emp.ID,
				Email:      emp.Email,
				Name:       emp.FullName(),
				Direction:  DirectionToActive,
				At:         *at,
			})
		}
	}

	return pending, nil
}

// SweepOverdue finds every employee whose trigger instant has already passed
// but who is still in the source state, and migrates each in its own
// transaction. One employee's failure never aborts another's migration;
// failures are logged and retried by the next pass.
func (s *LifecycleService) SweepOverdue(now time.Time) {
	candidates, err := s.Employees.ListDeletionCandidates()
	if err != nil {
		log.Printf("lifecycle: sweep failed to list deletion candidates: %v", err)
	} else {
		for i := range candidates {
			emp := &candidates[i]
			at, reason := s.DeletionTrigger(emp)
			if at == nil || at.After(now) {
				continue
			}
			if err := s.ArchiveNow(emp.ID, reason); err != nil {
				log.Printf("lifecycle: sweep archival failed: %v", err)
				continue
			}
			log.Printf("lifecycle: swept employee %d to archive (%s)", emp.ID, reason)
		}
	}

	archived, err := s.Archive.ListRestorationCandidates()
	if err != nil {
		log.Printf("lifecycle: sweep failed to list restoration candidates: %v", err)
		return
	}
	for i := range archived {
		emp := &archived[i]
		at := s.RestorationTrigger(emp)
		if at == nil || at.After(now) {
			continue
		}
		if err := s.RestoreNow(emp.ID, nil); err != nil {
			log.Printf("lifecycle: sweep restoration failed: %v", err)
			continue
		}
		log.Printf("lifecycle: swept employee %d back to active", emp.ID)
	}
}

// NotifyScheduled emits the pre-trigger "your transition is scheduled"
// notification and event for a future transition.
func (s *LifecycleService) NotifyScheduled(p PendingTransition) {
	at := p.At
	var notes []NotificationRequest
	if p.Email != "" {
		notes = append(notes, NotificationRequest{Kind: NotifyScheduled, Email: p.Email, Name: p.Name, When: &at})
	}
	s.Dispatcher.Dispatch(nil,
		notes,
		[]realtime.Event{realtime.NewEvent(realtime.EventEmployeeScheduled, p.EmployeeID, map[string]interface{}{
			"direction": string(p.Direction),
			"at":        at.Format(time.RFC3339),
		})},
	)
}
