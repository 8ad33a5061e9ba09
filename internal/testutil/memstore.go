// Package testutil provides in-memory stand-ins for the MySQL stores and
// the RabbitMQ publisher, for service, handler and router tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/repository"
)

// Store holds every table behind one mutex, which makes Book atomic in
// the same sense the MySQL transaction is.  Listings preserve insertion
// order.
type Store struct {
	mu sync.Mutex

	clubs    map[string]model.Club
	students map[string]model.Student
	events   map[string]model.Event
	tickets  map[string]model.Ticket

	eventOrder  []string
	ticketOrder []string
}

func NewStore() *Store {
	return &Store{
		clubs:    map[string]model.Club{},
		students: map[string]model.Student{},
		events:   map[string]model.Event{},
		tickets:  map[string]model.Ticket{},
	}
}

func (s *Store) Clubs() *ClubStore       { return &ClubStore{s} }
func (s *Store) Students() *StudentStore { return &StudentStore{s} }
func (s *Store) Events() *EventStore     { return &EventStore{s} }
func (s *Store) Tickets() *TicketStore   { return &TicketStore{s} }

// TicketCount returns the number of live tickets for eventID.
func (s *Store) TicketCount(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(eventID)
}

func (s *Store) countLocked(eventID string) int {
	n := 0
	for _, t := range s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n
}

type ClubStore struct{ s *Store }

func (c *ClubStore) Create(_ context.Context, club *model.Club) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	club.Email = strings.ToLower(strings.TrimSpace(club.Email))
	for _, existing := range c.s.clubs {
		if existing.Email == club.Email {
			return repository.ErrEmailExists
		}
	}
	c.s.clubs[club.ID] = *club
	return nil
}

func (c *ClubStore) GetByID(_ context.Context, id string) (*model.Club, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	club, ok := c.s.clubs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &club, nil
}

func (c *ClubStore) GetByEmail(_ context.Context, email string) (*model.Club, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, club := range c.s.clubs {
		if club.Email == email {
			return &club, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *ClubStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := c.GetByEmail(ctx, email)
	return err == nil, nil
}

type StudentStore struct{ s *Store }

func (st *StudentStore) Create(_ context.Context, student *model.Student) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	student.Email = strings.ToLower(strings.TrimSpace(student.Email))
	for _, existing := range st.s.students {
		if existing.Email == student.Email {
			return repository.ErrEmailExists
		}
		if existing.RbtNumber == student.RbtNumber {
			return repository.ErrRbtNumberExists
		}
	}
	st.s.students[student.ID] = *student
	return nil
}

func (st *StudentStore) GetByID(_ context.Context, id string) (*model.Student, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	student, ok := st.s.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &student, nil
}

func (st *StudentStore) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, student := range st.s.students {
		if student.Email == email {
			return &student, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (st *StudentStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := st.GetByEmail(ctx, email)
	return err == nil, nil
}

func (st *StudentStore) ExistsByRbtNumber(_ context.Context, rbt string) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, student := range st.s.students {
		if student.RbtNumber == rbt {
			return true, nil
		}
	}
	return false, nil
}

type EventStore struct{ s *Store }

func (e *EventStore) Create(_ context.Context, ev *model.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.s.events[ev.ID] = *ev
	e.s.eventOrder = append(e.s.eventOrder, ev.ID)
	return nil
}

func (e *EventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	ev, ok := e.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ev, nil
}

func (e *EventStore) List(_ context.Context) ([]model.Event, error) {
	return e.filter(func(model.Event) bool { return true }), nil
}

func (e *EventStore) ListByClub(_ context.Context, clubID string) ([]model.Event, error) {
	return e.filter(func(ev model.Event) bool { return ev.ClubID == clubID }), nil
}

func (e *EventStore) filter(keep func(model.Event) bool) []model.Event {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	out := []model.Event{}
	for _, id := range e.s.eventOrder {
		if ev, ok := e.s.events[id]; ok && keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func (e *EventStore) Update(_ context.Context, ev *model.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	current, ok := e.s.events[ev.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if ev.Capacity < e.s.countLocked(ev.ID) {
		return repository.ErrCapacityBelowBooked
	}
	current.Name, current.Description = ev.Name, ev.Description
	current.Date, current.Time, current.Venue = ev.Date, ev.Time, ev.Venue
	current.Capacity = ev.Capacity
	e.s.events[ev.ID] = current
	return nil
}

func (e *EventStore) Delete(_ context.Context, id string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if _, ok := e.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(e.s.events, id)
	return nil
}

type TicketStore struct{ s *Store }

func (t *TicketStore) Book(_ context.Context, ticket *model.Ticket) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	ev, ok := t.s.events[ticket.EventID]
	if !ok {
		return repository.ErrNotFound
	}
	ticket.Email = strings.ToLower(strings.TrimSpace(ticket.Email))
	for _, existing := range t.s.tickets {
		if existing.EventID == ticket.EventID && existing.Email == ticket.Email {
			return repository.ErrAlreadyBooked
		}
	}
	if t.s.countLocked(ticket.EventID) >= ev.Capacity {
		return repository.ErrEventFull
	}
	t.s.tickets[ticket.ID] = *ticket
	t.s.ticketOrder = append(t.s.ticketOrder, ticket.ID)
	return nil
}

func (t *TicketStore) GetByID(_ context.Context, id string) (*model.Ticket, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	ticket, ok := t.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (t *TicketStore) ListByEmail(_ context.Context, email string) ([]model.Ticket, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return t.filter(func(tk model.Ticket) bool { return tk.Email == email }), nil
}

func (t *TicketStore) ListByEvent(_ context.Context, eventID string) ([]model.Ticket, error) {
	return t.filter(func(tk model.Ticket) bool { return tk.EventID == eventID }), nil
}

func (t *TicketStore) filter(keep func(model.Ticket) bool) []model.Ticket {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := []model.Ticket{}
	for _, id := range t.s.ticketOrder {
		if tk, ok := t.s.tickets[id]; ok && keep(tk) {
			out = append(out, tk)
		}
	}
	return out
}

func (t *TicketStore) Delete(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.s.tickets, id)
	return nil
}
