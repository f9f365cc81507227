package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/db"
)

// NewTestDB opens a migrated SQLite database in a per-test temp dir.
// A file database is used so concurrent connections share one schema.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ours.db")
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	database, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return database
}

// SeedUser inserts a user with an empty-image profile and returns its id.
// The password hash is not a valid bcrypt hash.
func SeedUser(t *testing.T, database *sqlx.DB, username string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := database.Exec(`INSERT INTO users (id, email, username, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, username+"@example.com", username, "x", now)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	_, err = database.Exec(`INSERT INTO profiles (id, user_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), id, username, now, now)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return id
}
