package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() keeps parallel tests apart.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it cannot be read as DSN query parameters.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if _, err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedGraduates inserts one published graduate per title, one day apart
// starting at 2024-01-01, and returns them with IDs assigned.
func seedGraduates(t *testing.T, repo *GraduateRepo, titles ...string) []model.Graduate {
	t.Helper()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	out := make([]model.Graduate, 0, len(titles))
	for i, title := range titles {
		at := base.AddDate(0, 0, i)
		g, err := repo.Create(context.Background(), model.Graduate{
			Title:       title,
			Content:     "Profile of " + title,
			Status:      model.PostStatusPublish,
			Date:        at,
			DateGMT:     at,
			Modified:    at,
			ModifiedGMT: at,
		})
		if err != nil {
			t.Fatalf("seed graduate %q: %v", title, err)
		}
		out = append(out, g)
	}
	return out
}
