package database

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDSN(t *testing.T) {
	dsn := Options{User: "app", Pass: "s3cret", Host: "db", Port: "3306", Name: "campus"}.DSN()

	assert.True(t, strings.HasPrefix(dsn, "app:s3cret@tcp(db:3306)/campus?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestSchemaStatements(t *testing.T) {
	stmts := statements(schema)
	require.Len(t, stmts, 4)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
	}
	assert.Contains(t, stmts[2], "CREATE TABLE IF NOT EXISTS events")
	assert.Contains(t, stmts[3], "UNIQUE KEY uq_tickets_event_email (event_id, email)")
}

func TestStatementsIgnoreSemicolonsInComments(t *testing.T) {
	script := `
-- first; with a semicolon
CREATE TABLE a (id INT);
  -- indented; comment
CREATE TABLE b (
    id INT -- trailing words stay
);
;
`
	stmts := statements(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE b ("), stmts[1])
}

// TestMigrateAgainstMySQL needs a scratch database, e.g.
// TEST_MYSQL_DSN="root:pw@tcp(localhost:3306)/campus_test?parseTime=true".
func TestMigrateAgainstMySQL(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	host, port, _ := strings.Cut(cfg.Addr, ":")

	ctx := context.Background()
	db, err := Open(ctx, Options{User: cfg.User, Pass: cfg.Passwd, Host: host, Port: port, Name: cfg.DBName})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrations must be re-runnable")

	for _, table := range []string{"clubs", "students", "events", "tickets"} {
		var n int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
			table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}
