// Package queue defines the ticket lifecycle messages exchanged over
// RabbitMQ and the consumer that records them.
package queue

import "time"

// QueueName is the durable queue carrying every ticket event.  Events
// are published on the default exchange with the queue name as routing
// key.
const QueueName = "ticket.events"

// Event types carried in TicketEvent.Type.
const (
	TypeTicketBooked    = "ticket.booked"
	TypeTicketCancelled = "ticket.cancelled"
)

// TicketEvent is published after a booking commits or a cancellation
// succeeds.  It carries enough for downstream consumers to log or notify
// without reading the primary database.
type TicketEvent struct {
	Type        string    `json:"type"`
	TicketID    string    `json:"ticketId"`
	EventID     string    `json:"eventId"`
	EventName   string    `json:"eventName"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Email       string    `json:"email"`
	OccurredAt  time.Time `json:"occurredAt"`
}
