package services

import (
	"log"
	"time"

	"github.com/torikura/rosterbackend/notifications"
	"github.com/torikura/rosterbackend/realtime"
	"github.com/torikura/rosterbackend/replication"
)

// Replication operation kinds.
const (
	ReplicationUpsert = "upsert"
	ReplicationDelete = "delete"
)

// ReplicationOp is one row-level change to forward to the replication sink.
type ReplicationOp struct {
	Op          string
	Table       string
	Row         interface{} // upsert payload
	ConflictKey string      // upsert conflict key
	Key         string      // delete column
	Value       interface{} // delete value
}

// Notification kinds.
const (
	NotifyDeactivated = "deactivated"
	NotifyActivated   = "activated"
	NotifyScheduled   = "scheduled"
)

// NotificationRequest is one email send to hand off to the dispatcher.
type NotificationRequest struct {
	Kind  string
	Email string
	Name  string
	When  *time.Time
}

// EffectDispatcher consumes the effect lists produced by the core transition
// and scheduling operations, outside any transaction boundary. Collaborator
// failures are logged and never propagated.
type EffectDispatcher struct {
	Sink   replication.Sink
	Mailer notifications.Dispatcher
	Hub    *realtime.Hub
}

func NewEffectDispatcher(sink replication.Sink, mailer notifications.Dispatcher, hub *realtime.Hub) *EffectDispatcher {
	return &EffectDispatcher{Sink: sink, Mailer: mailer, Hub: hub}
}

// Dispatch forwards replication ops, notifications and realtime events,
// logging every failure and returning nothing: by the time effects run, the
// local transaction has already committed.
func (d *EffectDispatcher) Dispatch(replications []ReplicationOp, notes []NotificationRequest, events []realtime.Event) {
	if d == nil {
		return
	}

	if d.Sink != nil {
		for _, op := range replications {
			var err error
			switch op.Op {
			case ReplicationUpsert:
				err = d.Sink.Upsert(op.Table, op.Row, op.ConflictKey)
			case ReplicationDelete:
				err = d.Sink.Delete(op.Table, op.Key, op.Value)
			}
			if err != nil {
				log.Printf("effects: replication %s on %s failed: %v", op.Op, op.Table, err)
			}
		}
	}

	if d.Mailer != nil {
		for _, n := range notes {
			var err error
			switch n.Kind {
			case NotifyDeactivated:
				err = d.Mailer.SendDeactivated(n.Email, n.Name)
			case NotifyActivated:
				err = d.Mailer.SendActivated(n.Email, n.Name)
			case NotifyScheduled:
				when := time.Time{}
				if n.When != nil {
					when = *n.When
				}
				err = d.Mailer.SendScheduled(n.Email, n.Name, when)
			}
			if err != nil {
				log.Printf("effects: %s notification to %s failed: %v", n.Kind, n.Email, err)
			}
		}
	}

	if d.Hub != nil {
		for _, ev := range events {
			d.Hub.Broadcast(ev)
		}
	}
}
