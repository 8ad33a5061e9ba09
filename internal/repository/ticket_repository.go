package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// TicketRepo stores tickets.  Booking is the only write that has to
// respect the event's capacity; it runs as a single transaction holding
// a row lock on the event.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = "id, event_id, event_name, student_name, email, booking_time"

// Book inserts t if the event still exists, t.Email holds no ticket for
// it and the event has a free seat.  Concurrent calls for the same event
// serialise on the event row, so the count check and the insert are one
// atomic step.  The unique (event_id, email) index catches duplicates
// that reach the insert regardless.
//
// Errors: ErrNotFound, ErrAlreadyBooked, ErrEventFull.
func (r *TicketRepo) Book(ctx context.Context, t *model.Ticket) error {
	t.Email = normalizeEmail(t.Email)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	err = tx.QueryRowContext(ctx, "SELECT capacity FROM events WHERE id=? FOR UPDATE", t.EventID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var mine int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE event_id=? AND email=?", t.EventID, t.Email).Scan(&mine); err != nil {
		return err
	}
	if mine > 0 {
		return ErrAlreadyBooked
	}

	var booked int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE event_id=?", t.EventID).Scan(&booked); err != nil {
		return err
	}
	if booked >= capacity {
		return ErrEventFull
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO tickets ("+ticketColumns+") VALUES (?,?,?,?,?,?)",
		t.ID, t.EventID, t.EventName, t.StudentName, t.Email, t.BookingTime)
	if _, dup := duplicateKey(err); dup {
		return ErrAlreadyBooked
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns ErrNotFound when the ticket does not exist.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id=? LIMIT 1", id).Scan(
		&t.ID, &t.EventID, &t.EventName, &t.StudentName, &t.Email, &t.BookingTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByEmail returns every ticket held by email, oldest first.
func (r *TicketRepo) ListByEmail(ctx context.Context, email string) ([]model.Ticket, error) {
	return r.query(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE email=? ORDER BY booking_time, id", normalizeEmail(email))
}

// ListByEvent returns the attendees of eventID in booking order.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Ticket, error) {
	return r.query(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE event_id=? ORDER BY booking_time, id", eventID)
}

func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TicketRepo) query(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.EventID, &t.EventName, &t.StudentName, &t.Email, &t.BookingTime); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
