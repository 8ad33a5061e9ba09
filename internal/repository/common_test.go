package repository_test

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-ticketing/internal/database"
	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/repository"
)

// testDB is a migrated scratch MySQL database, or nil when
// TEST_MYSQL_DSN is unset.  Tests that need it call setupTestWithTruncate,
// which skips them in that case.
var testDB *sql.DB

func TestMain(m *testing.M) {
	if dsn := os.Getenv("TEST_MYSQL_DSN"); dsn != "" {
		db, err := openTestDB(dsn)
		if err != nil {
			log.Fatalf("open test database: %v", err)
		}
		testDB = db
	}

	code := m.Run()
	if testDB != nil {
		_ = testDB.Close()
	}
	os.Exit(code)
}

func openTestDB(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	host, port, _ := strings.Cut(cfg.Addr, ":")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, database.Options{
		User: cfg.User, Pass: cfg.Passwd, Host: host, Port: port, Name: cfg.DBName,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// setupTestWithTruncate empties every table, keeping the schema.
func setupTestWithTruncate(t *testing.T) *sql.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	for _, table := range []string{"tickets", "events", "students", "clubs"} {
		_, err := testDB.Exec("TRUNCATE TABLE " + table)
		require.NoError(t, err, "truncate %s", table)
	}
	return testDB
}

func createTestClub(t *testing.T, db *sql.DB, name string) *model.Club {
	t.Helper()
	c := &model.Club{ID: uuid.NewString(), ClubName: name, Email: strings.ToLower(name) + "@clubs.uni.edu", PasswordHash: "x"}
	require.NoError(t, repository.NewClubRepo(db).Create(context.Background(), c))
	return c
}

func createTestEvent(t *testing.T, db *sql.DB, club *model.Club, capacity int) *model.Event {
	t.Helper()
	ev := &model.Event{
		ID: uuid.NewString(), Name: "Go Meetup", Description: "talks", Date: "2026-11-20", Time: "18:00",
		Venue: "Lab 4", Capacity: capacity, ClubID: club.ID, ClubName: club.ClubName,
	}
	require.NoError(t, repository.NewEventRepo(db).Create(context.Background(), ev))
	return ev
}

func newTicket(ev *model.Event, email string) *model.Ticket {
	return &model.Ticket{
		ID: uuid.NewString(), EventID: ev.ID, EventName: ev.Name, StudentName: "Student",
		Email: email, BookingTime: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func assertTicketCount(t *testing.T, db *sql.DB, eventID string, expected int) {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tickets WHERE event_id=?", eventID).Scan(&n))
	require.Equal(t, expected, n)
}
