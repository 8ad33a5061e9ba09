// Package repository holds the MySQL-backed stores and the sentinel
// errors they share.  Higher layers match these with errors.Is and
// translate them into domain errors; the in-memory test store returns
// the same values so both implementations honour one contract.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by primary key or unique field
// matches no row.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when an insert collides with an existing
// account email.
var ErrEmailExists = errors.New("email already exists")

// ErrRbtNumberExists is returned when a student insert collides with an
// existing RBT number.
var ErrRbtNumberExists = errors.New("rbt number already exists")

// ErrAlreadyBooked is returned by Book when the email already holds a
// ticket for the event.
var ErrAlreadyBooked = errors.New("ticket already booked for this event")

// ErrEventFull is returned by Book when the event has no seats left.
var ErrEventFull = errors.New("event is fully booked")

// ErrCapacityBelowBooked is returned by an event update that would set
// the capacity below the number of live tickets.
var ErrCapacityBelowBooked = errors.New("capacity below booked tickets")

// mysqlDuplicateEntry is the server error number for a unique key
// violation (ER_DUP_ENTRY).
const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a MySQL unique key violation and,
// if so, the message naming the offending key.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me.Message, true
	}
	return "", false
}

// normalizeEmail lower-cases and trims an address before it is stored or
// compared.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
