package model

import "time"

// Ticket records a student's seat at an event.  A ticket is owned by
// the student's email, not the student ID, and is never updated: it is
// created by booking and removed by cancellation.  EventName and
// StudentName are point-in-time copies and are not refreshed when the
// event or student changes.
//
// Fields:
//  ID          – UUID primary key.
//  EventID     – event the ticket admits to; not a foreign key.
//  EventName   – event name at booking time.
//  StudentName – student name at booking time.
//  Email       – owning student's email, lower-cased.
//  BookingTime – UTC instant the booking committed.
type Ticket struct {
	ID          string    `json:"id"`          // tickets.id
	EventID     string    `json:"eventId"`     // tickets.event_id
	EventName   string    `json:"eventName"`   // tickets.event_name
	StudentName string    `json:"studentName"` // tickets.student_name
	Email       string    `json:"email"`       // tickets.email
	BookingTime time.Time `json:"bookingTime"` // tickets.booking_time
}
