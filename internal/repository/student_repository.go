package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// StudentRepo stores student accounts.  Both email and rbt_number carry
// unique indexes; Create tells the two collisions apart by key name.
type StudentRepo struct{ db *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

const studentColumns = "id, name, rbt_number, email, password_hash, created_at"

// Create inserts s.  The email is normalized in place before insert.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	s.Email = normalizeEmail(s.Email)
	s.RbtNumber = strings.TrimSpace(s.RbtNumber)
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO students (id, name, rbt_number, email, password_hash) VALUES (?,?,?,?,?)",
		s.ID, s.Name, s.RbtNumber, s.Email, s.PasswordHash)
	if msg, dup := duplicateKey(err); dup {
		if strings.Contains(msg, "uq_students_rbt") {
			return ErrRbtNumberExists
		}
		return ErrEmailExists
	}
	return err
}

// GetByID returns ErrNotFound when no student has the id.
func (r *StudentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id=? LIMIT 1", id))
}

func (r *StudentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE email=? LIMIT 1", normalizeEmail(email)))
}

func (r *StudentRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM students WHERE email=?", normalizeEmail(email))
}

func (r *StudentRepo) ExistsByRbtNumber(ctx context.Context, rbt string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM students WHERE rbt_number=?", strings.TrimSpace(rbt))
}

func (r *StudentRepo) exists(ctx context.Context, q string, arg string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *StudentRepo) scanOne(row *sql.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.Name, &s.RbtNumber, &s.Email, &s.PasswordHash, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
