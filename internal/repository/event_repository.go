package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// EventRepo stores events.  Listings are ordered by creation so the
// public catalogue is stable between requests.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = "id, name, description, event_date, event_time, venue, capacity, club_id, club_name"

func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, name, description, event_date, event_time, venue, capacity, club_id, club_name)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Name, e.Description, e.Date, e.Time, e.Venue, e.Capacity, e.ClubID, e.ClubName)
	return err
}

// GetByID returns ErrNotFound when the event does not exist.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=? LIMIT 1", id).Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Time, &e.Venue, &e.Capacity, &e.ClubID, &e.ClubName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx, "SELECT "+eventColumns+" FROM events ORDER BY created_at, id")
}

// ListByClub returns the events owned by clubID.
func (r *EventRepo) ListByClub(ctx context.Context, clubID string) ([]model.Event, error) {
	return r.query(ctx, "SELECT "+eventColumns+" FROM events WHERE club_id=? ORDER BY created_at, id", clubID)
}

// Update overwrites the mutable fields of e.  The event row is locked
// while live tickets are counted so a concurrent booking cannot slip in
// between the check and the write.  club_id and club_name are never
// touched.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
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

	var locked string
	err = tx.QueryRowContext(ctx, "SELECT id FROM events WHERE id=? FOR UPDATE", e.ID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var booked int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets WHERE event_id=?", e.ID).Scan(&booked); err != nil {
		return err
	}
	if e.Capacity < booked {
		return ErrCapacityBelowBooked
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET name=?, description=?, event_date=?, event_time=?, venue=?, capacity=?
		 WHERE id=?`,
		e.Name, e.Description, e.Date, e.Time, e.Venue, e.Capacity, e.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes the event row only.  Tickets referencing it are left in
// place.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
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

func (r *EventRepo) query(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Time, &e.Venue, &e.Capacity, &e.ClubID, &e.ClubName); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
