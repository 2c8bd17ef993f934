//go:build integration

package data

import (
	"io/fs"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// newTestDB creates a new in-memory SQLite database with the embedded schema applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	files, err := fs.Glob(migrationsFS, "migrations/sqlite3/*.up.sql")
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(files)
	for _, f := range files {
		schema, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", f, err)
		}
		db.MustExec(string(schema))
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedPillar(t *testing.T, db *sqlx.DB, slug, name string) int64 {
	t.Helper()
	res := db.MustExec(`INSERT INTO pillars (slug, name, description) VALUES (?, ?, ?)`, slug, name, name+" pillar")
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedAuthor(t *testing.T, db *sqlx.DB, slug, name string) int64 {
	t.Helper()
	res := db.MustExec(`INSERT INTO authors (slug, name, bio) VALUES (?, ?, ?)`, slug, name, "Writes about "+slug)
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatal(err)
	}
	return id
}

type articleSeed struct {
	Slug        string
	PillarID    int64
	AuthorID    int64
	Status      ArticleStatus
	Featured    bool
	PublishedAt time.Time
	UpdatedAt   time.Time
	Body        string
}

func seedArticle(t *testing.T, db *sqlx.DB, a articleSeed) string {
	t.Helper()
	if a.Status == "" {
		a.Status = StatusPublished
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.PublishedAt
	}
	if a.Body == "" {
		a.Body = `[{"_type":"block","style":"normal","children":[{"_type":"span","text":"Hello"}]}]`
	}
	var authorID interface{}
	if a.AuthorID != 0 {
		authorID = a.AuthorID
	}
	res := db.MustExec(`INSERT INTO articles
		(slug, title, author_id, pillar_id, rich_text_body, is_featured, status, seo_keywords, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Slug, "Title "+a.Slug, authorID, a.PillarID, a.Body, a.Featured, string(a.Status),
		`["calm","focus"]`, a.PublishedAt.UTC(), a.PublishedAt.UTC(), a.UpdatedAt.UTC())
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatal(err)
	}
	return strconv.FormatInt(id, 10)
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 12, 0, 0, 0, time.UTC)
}
