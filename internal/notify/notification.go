package notify

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeBookingNotify = "booking:notify"

type Event string

const (
	EventRequested  Event = "booking_requested"
	EventConfirmed  Event = "booking_confirmed"
	EventCompleted  Event = "booking_completed"
	EventCancelled  Event = "booking_cancelled"
	EventReassigned Event = "booking_reassigned"
	EventReminder   Event = "booking_reminder"
)

// Notification is what gets delivered to one user about one booking.
type Notification struct {
	UserID     string `json:"user_id"`
	BookingID  string `json:"booking_id"`
	BookingUID string `json:"booking_uid"`
	Event      Event  `json:"event"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Reason     string `json:"reason,omitempty"`
}

// Sender hands a notification to the delivery channel.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

func NewNotifyTask(n Notification) (*asynq.Task, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingNotify, b), nil
}
