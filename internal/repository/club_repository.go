package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// ClubRepo stores club accounts.
type ClubRepo struct{ db *sql.DB }

func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{db: db} }

const clubColumns = "id, club_name, email, password_hash, created_at"

// Create inserts c.  The email is normalized in place before insert.
func (r *ClubRepo) Create(ctx context.Context, c *model.Club) error {
	c.Email = normalizeEmail(c.Email)
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO clubs (id, club_name, email, password_hash) VALUES (?,?,?,?)",
		c.ID, c.ClubName, c.Email, c.PasswordHash)
	if _, dup := duplicateKey(err); dup {
		return ErrEmailExists
	}
	return err
}

// GetByID returns ErrNotFound when no club has the id.
func (r *ClubRepo) GetByID(ctx context.Context, id string) (*model.Club, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+clubColumns+" FROM clubs WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a club by normalized email.
func (r *ClubRepo) GetByEmail(ctx context.Context, email string) (*model.Club, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+clubColumns+" FROM clubs WHERE email=? LIMIT 1", normalizeEmail(email)))
}

func (r *ClubRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clubs WHERE email=?", normalizeEmail(email)).Scan(&n)
	return n > 0, err
}

func (r *ClubRepo) scanOne(row *sql.Row) (*model.Club, error) {
	var c model.Club
	err := row.Scan(&c.ID, &c.ClubName, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
