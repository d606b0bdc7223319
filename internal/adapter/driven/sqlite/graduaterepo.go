package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GraduateStore = (*GraduateRepo)(nil)

const graduateColumns = `id, title, first_name, last_name, content, excerpt, status,
	featured_media_id, slug, date, date_gmt, modified, modified_gmt`

// orderColumns maps the public sort keys to columns. Anything else is rejected
// before it reaches SQL.
var orderColumns = map[model.OrderBy]string{
	model.OrderByTitle: "title",
	model.OrderByDate:  "date",
	model.OrderByID:    "id",
}

// GraduateRepo is the SQLite implementation of the GraduateStore port interface.
type GraduateRepo struct {
	db *DB
}

// NewGraduateRepo creates a new GraduateRepo backed by the given DB.
func NewGraduateRepo(db *DB) *GraduateRepo {
	return &GraduateRepo{db: db}
}

// Create inserts a new graduate and returns it with its assigned ID.
func (r *GraduateRepo) Create(ctx context.Context, g model.Graduate) (model.Graduate, error) {
	const query = `
		INSERT INTO graduates (
			post_type, title, first_name, last_name, content, excerpt, status,
			featured_media_id, slug, date, date_gmt, modified, modified_gmt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Writer.ExecContext(ctx, query,
		model.PostTypeGraduate, g.Title, g.FirstName, g.LastName, g.Content, g.Excerpt, string(g.Status),
		g.FeaturedMediaID, g.Slug,
		formatTime(g.Date), formatTime(g.DateGMT), formatTime(g.Modified), formatTime(g.ModifiedGMT),
	)
	if isUniqueViolation(err) {
		return model.Graduate{}, fmt.Errorf("insert graduate %q: %w", g.Slug, model.ErrSlugTaken)
	}
	if err != nil {
		return model.Graduate{}, fmt.Errorf("insert graduate %q: %w", g.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Graduate{}, fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id
	return g, nil
}

// Update replaces every mutable field of an existing graduate. Returns
// model.ErrNotFound if no row has the graduate's ID.
func (r *GraduateRepo) Update(ctx context.Context, g model.Graduate) error {
	const query = `
		UPDATE graduates SET
			title = ?, first_name = ?, last_name = ?, content = ?, excerpt = ?, status = ?,
			featured_media_id = ?, slug = ?, date = ?, date_gmt = ?, modified = ?, modified_gmt = ?
		WHERE id = ? AND post_type = ?
	`

	res, err := r.db.Writer.ExecContext(ctx, query,
		g.Title, g.FirstName, g.LastName, g.Content, g.Excerpt, string(g.Status),
		g.FeaturedMediaID, g.Slug,
		formatTime(g.Date), formatTime(g.DateGMT), formatTime(g.Modified), formatTime(g.ModifiedGMT),
		g.ID, model.PostTypeGraduate,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("update graduate %d slug %q: %w", g.ID, g.Slug, model.ErrSlugTaken)
	}
	if err != nil {
		return fmt.Errorf("update graduate %d: %w", g.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update graduate %d: %w", g.ID, model.ErrNotFound)
	}
	return nil
}

// Get retrieves a single graduate by ID. Returns model.ErrNotFound if it does not exist.
func (r *GraduateRepo) Get(ctx context.Context, id int64) (*model.Graduate, error) {
	query := `SELECT ` + graduateColumns + ` FROM graduates WHERE id = ? AND post_type = ?`

	g, err := scanGraduate(r.db.Reader.QueryRowContext(ctx, query, id, model.PostTypeGraduate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get graduate %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get graduate %d: %w", id, err)
	}
	return g, nil
}

// SlugExists reports whether a graduate other than excludeID already uses slug.
func (r *GraduateRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM graduates WHERE post_type = ? AND slug = ? AND id != ?)`

	var exists bool
	if err := r.db.Reader.QueryRowContext(ctx, query, model.PostTypeGraduate, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

// Query returns one page of graduates matching q together with the total match
// count. Pages past the end return no posts. Rows that tie on the sort key
// come back in id order.
func (r *GraduateRepo) Query(ctx context.Context, q model.EntityQuery) (model.EntityQueryResult, error) {
	column, ok := orderColumns[q.OrderBy]
	if !ok {
		return model.EntityQueryResult{}, fmt.Errorf("unsupported orderby %q", q.OrderBy)
	}
	direction := "ASC"
	if q.Order == model.SortDesc {
		direction = "DESC"
	}

	postType := q.PostType
	if postType == "" {
		postType = model.PostTypeGraduate
	}

	where := []string{"post_type = ?"}
	args := []any{postType}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if term := strings.TrimSpace(q.SearchTerm); term != "" {
		like := "%" + escapeLike(term) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	whereClause := strings.Join(where, " AND ")

	var found int
	countQuery := `SELECT COUNT(*) FROM graduates WHERE ` + whereClause
	if err := r.db.Reader.QueryRowContext(ctx, countQuery, args...).Scan(&found); err != nil {
		return model.EntityQueryResult{}, fmt.Errorf("count graduates: %w", err)
	}

	listQuery := `SELECT ` + graduateColumns + ` FROM graduates WHERE ` + whereClause +
		` ORDER BY ` + column + ` ` + direction
	if column != "id" {
		listQuery += `, id ASC`
	}

	listArgs := append([]any{}, args...)
	maxPages := 0
	if q.PerPage > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		listQuery += ` LIMIT ? OFFSET ?`
		listArgs = append(listArgs, q.PerPage, (page-1)*q.PerPage)
		maxPages = model.TotalPagesFor(found, q.PerPage)
	} else if found > 0 {
		maxPages = 1
	}

	posts, err := r.queryGraduates(ctx, listQuery, listArgs...)
	if err != nil {
		return model.EntityQueryResult{}, err
	}

	return model.EntityQueryResult{
		Posts:      posts,
		FoundCount: found,
		MaxPages:   maxPages,
	}, nil
}

func (r *GraduateRepo) queryGraduates(ctx context.Context, query string, args ...any) ([]model.Graduate, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query graduates: %w", err)
	}
	defer rows.Close()

	graduates := []model.Graduate{}
	for rows.Next() {
		g, err := scanGraduate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan graduate: %w", err)
		}
		graduates = append(graduates, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graduates: %w", err)
	}

	return graduates, nil
}

func scanGraduate(s scanner) (*model.Graduate, error) {
	var g model.Graduate
	var status string
	var date, dateGMT, modified, modifiedGMT string

	err := s.Scan(
		&g.ID, &g.Title, &g.FirstName, &g.LastName, &g.Content, &g.Excerpt, &status,
		&g.FeaturedMediaID, &g.Slug, &date, &dateGMT, &modified, &modifiedGMT,
	)
	if err != nil {
		return nil, err
	}

	g.Status = model.PostStatus(status)

	if g.Date, err = parseTime(date); err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	if g.DateGMT, err = parseTime(dateGMT); err != nil {
		return nil, fmt.Errorf("parse date_gmt: %w", err)
	}
	if g.Modified, err = parseTime(modified); err != nil {
		return nil, fmt.Errorf("parse modified: %w", err)
	}
	if g.ModifiedGMT, err = parseTime(modifiedGMT); err != nil {
		return nil, fmt.Errorf("parse modified_gmt: %w", err)
	}

	return &g, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedriver.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// escapeLike escapes the LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
