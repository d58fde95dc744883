package notifications

import (
	"log"
	"time"
)

// Dispatcher is the status-change email collaborator. Implementations own
// their delivery and retry behavior; callers treat any returned error as
// log-only and never retry synchronously.
type Dispatcher interface {
	SendDeactivated(email, name string) error
	SendActivated(email, name string) error
	SendScheduled(email, name string, when time.Time) error
}

// LogDispatcher writes notifications to the process log. Stands in for the
// real mail collaborator in development and tests.
type LogDispatcher struct{}

func (LogDispatcher) SendDeactivated(email, name string) error {
	log.Printf("notifications: deactivation notice for %s <%s>", name, email)
	return nil
}

func (LogDispatcher) SendActivated(email, name string) error {
	log.Printf("notifications: activation notice for %s <%s>", name, email)
	return nil
}

func (LogDispatcher) SendScheduled(email, name string, when time.Time) error {
	log.Printf("notifications: schedule notice for %s <%s> at %s", name, email, when.Format(time.RFC3339))
	return nil
}
