package model

import (
	"errors"
	"strings"
	"time"
)

// PostTypeGraduate is the entity type under which graduate records are stored.
const PostTypeGraduate = "graduate"

// ErrSlugTaken is returned by a store when another graduate already holds the slug.
var ErrSlugTaken = errors.New("slug already in use")

// Graduate is a directory entry for a single graduate. Content holds the
// Markdown source; rendering happens at the edges.
type Graduate struct {
	ID              int64
	Title           string
	FirstName       string
	LastName        string
	Content         string
	Excerpt         string
	Status          PostStatus
	FeaturedMediaID int64
	Slug            string
	Date            time.Time // local wall-clock publish time
	DateGMT         time.Time
	Modified        time.Time
	ModifiedGMT     time.Time
}

// FullName joins first and last name, trimming surrounding whitespace.
func (g Graduate) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(g.FirstName) + " " + strings.TrimSpace(g.LastName))
}

// DeriveTitle sets Title to the full name when one is available. A graduate
// with neither name keeps whatever title it already had.
func (g *Graduate) DeriveTitle() {
	if name := g.FullName(); name != "" {
		g.Title = name
	}
}
