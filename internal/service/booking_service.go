package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/queue"
	"github.com/iliyamo/campus-ticketing/internal/repository"
)

// EventInput carries the mutable fields of an event.
type EventInput struct {
	Name        string
	Description string
	Date        string
	Time        string
	Venue       string
	Capacity    int
}

// BookingService owns the event catalogue and ticket lifecycle.  Callers
// pass identities that were already authorized for the right role; the
// service enforces ownership, capacity and the one-ticket-per-event
// rule.
type BookingService struct {
	clubs     ClubStore
	students  StudentStore
	events    EventStore
	tickets   TicketStore
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time

	// tracks in-flight publishes so shutdown and tests can wait on them
	pending sync.WaitGroup
}

// NewBookingService wires the stores together.  publisher may be nil, in
// which case no ticket events are emitted.
func NewBookingService(clubs ClubStore, students StudentStore, events EventStore, tickets TicketStore,
	publisher EventPublisher, log *zap.Logger) *BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{
		clubs:     clubs,
		students:  students,
		events:    events,
		tickets:   tickets,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for booking timestamps.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Wait blocks until every ticket event handed to the publisher has been
// delivered or has failed.
func (s *BookingService) Wait() { s.pending.Wait() }

// CreateEvent stores a new event owned by clubID.  The club name is
// copied from the club record; the caller cannot choose a different
// owner.
func (s *BookingService) CreateEvent(ctx context.Context, clubID string, in EventInput) (*model.Event, error) {
	if in.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	club, err := s.clubs.GetByID(ctx, clubID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load club: %w", err)
	}

	ev := &model.Event{
		ID:       uuid.NewString(),
		ClubID:   club.ID,
		ClubName: club.ClubName,
	}
	in.applyTo(ev)
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created", zap.String("event_id", ev.ID), zap.String("club_id", club.ID),
		zap.Int("capacity", ev.Capacity))
	return ev, nil
}

// UpdateEvent overwrites the mutable fields of an event owned by clubID.
func (s *BookingService) UpdateEvent(ctx context.Context, eventID, clubID string, in EventInput) (*model.Event, error) {
	if in.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	ev, err := s.ownedEvent(ctx, eventID, clubID)
	if err != nil {
		return nil, err
	}
	in.applyTo(ev)
	switch err := s.events.Update(ctx, ev); {
	case errors.Is(err, repository.ErrCapacityBelowBooked):
		return nil, ErrCapacityBelowBooked
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrEventNotFound
	case err != nil:
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.log.Info("event updated", zap.String("event_id", ev.ID), zap.String("club_id", clubID))
	return ev, nil
}

// DeleteEvent removes an event owned by clubID.  Its tickets stay.
func (s *BookingService) DeleteEvent(ctx context.Context, eventID, clubID string) error {
	if _, err := s.ownedEvent(ctx, eventID, clubID); err != nil {
		return err
	}
	err := s.events.Delete(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", zap.String("event_id", eventID), zap.String("club_id", clubID))
	return nil
}

func (s *BookingService) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	return ev, nil
}

func (s *BookingService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListClubEvents returns the events owned by clubID.
func (s *BookingService) ListClubEvents(ctx context.Context, clubID string) ([]model.Event, error) {
	events, err := s.events.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list club events: %w", err)
	}
	return events, nil
}

// BookTicket issues studentID a ticket for eventID.  The duplicate and
// capacity checks happen inside the store's atomic Book, so two racing
// requests for the last seat cannot both succeed.
func (s *BookingService) BookTicket(ctx context.Context, studentID, eventID string) (*model.Ticket, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidEvent
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	t := &model.Ticket{
		ID:          uuid.NewString(),
		EventID:     ev.ID,
		EventName:   ev.Name,
		StudentName: student.Name,
		Email:       student.Email,
		BookingTime: s.now().UTC(),
	}
	switch err := s.tickets.Book(ctx, t); {
	case errors.Is(err, repository.ErrAlreadyBooked):
		s.log.Info("booking rejected: duplicate", zap.String("event_id", ev.ID), zap.String("student_id", studentID))
		return nil, ErrAlreadyBooked
	case errors.Is(err, repository.ErrEventFull):
		s.log.Info("booking rejected: event full", zap.String("event_id", ev.ID), zap.String("student_id", studentID))
		return nil, ErrCapacityExceeded
	case errors.Is(err, repository.ErrNotFound):
		// deleted between lookup and booking
		return nil, ErrInvalidEvent
	case err != nil:
		return nil, fmt.Errorf("book ticket: %w", err)
	}

	s.log.Info("ticket booked", zap.String("ticket_id", t.ID), zap.String("event_id", ev.ID),
		zap.String("student_id", studentID))
	s.publish(ctx, queue.TypeTicketBooked, t, studentID)
	return t, nil
}

// ListMyTickets returns the tickets held by the student's email.
func (s *BookingService) ListMyTickets(ctx context.Context, studentID string) ([]model.Ticket, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByEmail(ctx, student.Email)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// ListAttendees returns the tickets booked for eventID.
func (s *BookingService) ListAttendees(ctx context.Context, eventID string) ([]model.Ticket, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return tickets, nil
}

// CancelTicket deletes ticketID if it belongs to studentID.  Ownership is
// by email, compared case-insensitively.
func (s *BookingService) CancelTicket(ctx context.Context, studentID, ticketID string) error {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return err
	}
	t, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("load ticket: %w", err)
	}
	if !strings.EqualFold(t.Email, student.Email) {
		s.log.Warn("cancel rejected: not the owner", zap.String("ticket_id", ticketID),
			zap.String("student_id", studentID))
		return ErrForbidden
	}
	err = s.tickets.Delete(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}

	s.log.Info("ticket cancelled", zap.String("ticket_id", ticketID), zap.String("student_id", studentID))
	s.publish(ctx, queue.TypeTicketCancelled, t, studentID)
	return nil
}

func (s *BookingService) student(ctx context.Context, id string) (*model.Student, error) {
	st, err := s.students.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	return st, nil
}

func (s *BookingService) ownedEvent(ctx context.Context, eventID, clubID string) (*model.Event, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.ClubID != clubID {
		s.log.Warn("event mutation rejected: not the owner", zap.String("event_id", eventID),
			zap.String("club_id", clubID))
		return nil, ErrForbidden
	}
	return ev, nil
}

// publish hands the event to the publisher off the request path.  The
// request context is detached so a finished response does not abort
// delivery.
func (s *BookingService) publish(ctx context.Context, typ string, t *model.Ticket, studentID string) {
	if s.publisher == nil {
		return
	}
	ev := queue.TicketEvent{
		Type:        typ,
		TicketID:    t.ID,
		EventID:     t.EventID,
		EventName:   t.EventName,
		StudentID:   studentID,
		StudentName: t.StudentName,
		Email:       t.Email,
		OccurredAt:  s.now().UTC(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.publisher.Publish(pubCtx, ev); err != nil {
			s.log.Warn("publish ticket event failed", zap.String("type", typ),
				zap.String("ticket_id", t.ID), zap.Error(err))
		}
	}()
}

func (in EventInput) applyTo(ev *model.Event) {
	ev.Name = in.Name
	ev.Description = in.Description
	ev.Date = in.Date
	ev.Time = in.Time
	ev.Venue = in.Venue
	ev.Capacity = in.Capacity
}
