package model

import "time"

// Role names the kind of account a principal belongs to.  A token
// carries exactly one role and every protected route is gated on it.
type Role string

const (
	RoleClub    Role = "club"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleClub || r == RoleStudent
}

// Principal is the identity attached to a request once its bearer
// token has been verified and the subject found in the store.  It is
// never persisted.
type Principal struct {
	ID   string
	Role Role
}

// Club represents a row in the `clubs` table.  Clubs own events and
// are created only through registration.
//
// Fields:
//  ID           – UUID primary key.
//  ClubName     – display name copied onto every event the club creates.
//  Email        – unique, stored lower-cased.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of registration.
type Club struct {
	ID           string    `json:"id"`       // clubs.id
	ClubName     string    `json:"clubName"` // clubs.club_name
	Email        string    `json:"email"`    // clubs.email
	PasswordHash string    `json:"-"`        // clubs.password_hash
	CreatedAt    time.Time `json:"-"`        // clubs.created_at
}

// Student represents a row in the `students` table.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – display name, snapshotted onto tickets.
//  RbtNumber    – unique student registration number.
//  Email        – unique, stored lower-cased; tickets are owned by email.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of registration.
type Student struct {
	ID           string    `json:"id"`        // students.id
	Name         string    `json:"name"`      // students.name
	RbtNumber    string    `json:"rbtNumber"` // students.rbt_number
	Email        string    `json:"email"`     // students.email
	PasswordHash string    `json:"-"`         // students.password_hash
	CreatedAt    time.Time `json:"-"`         // students.created_at
}
