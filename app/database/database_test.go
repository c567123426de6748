package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testPost(id string, createdAt time.Time) Post {
	return Post{
		ID:           id,
		Text:         "post " + id,
		AuthorID:     "100",
		AuthorName:   "Alice",
		AuthorHandle: "alice",
		CreatedAt:    createdAt,
		FetchedAt:    createdAt.Add(time.Hour),
		LikeCount:    3,
		MediaJSON:    "[]",
		URL:          "https://x.com/alice/status/" + id,
		RawJSON:      "{}",
	}
}
