package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// ErrInvalidGraduate is returned when a graduate cannot be saved as given.
var ErrInvalidGraduate = errors.New("invalid graduate")

// createAttempts bounds retries when a concurrent insert claims the slug first.
const createAttempts = 3

// GraduateInput carries the editable fields of a graduate record. ID zero
// creates a new record.
type GraduateInput struct {
	ID              int64
	FirstName       string
	LastName        string
	Content         string
	Excerpt         string
	Status          model.PostStatus
	FeaturedMediaID int64
}

// GraduateService maps editor input onto stored graduate records and serves
// the admin and public listings.
type GraduateService struct {
	store    driven.GraduateStore
	location *time.Location
	now      func() time.Time
}

// NewGraduateService creates a GraduateService. location is the site's local
// time zone used for the non-GMT date fields; nil means UTC.
func NewGraduateService(store driven.GraduateStore, location *time.Location) *GraduateService {
	if location == nil {
		location = time.UTC
	}
	return &GraduateService{store: store, location: location, now: time.Now}
}

// Save creates or updates a graduate. The title is derived from the trimmed
// first and last name whenever either is set.
func (s *GraduateService) Save(ctx context.Context, in GraduateInput) (model.Graduate, error) {
	status := in.Status
	if status == "" {
		status = model.PostStatusPublish
	}
	if !status.Valid() {
		return model.Graduate{}, fmt.Errorf("%w: unknown status %q", ErrInvalidGraduate, status)
	}

	now := s.now()
	g := model.Graduate{
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Content:         in.Content,
		Excerpt:         strings.TrimSpace(in.Excerpt),
		Status:          status,
		FeaturedMediaID: in.FeaturedMediaID,
	}

	if in.ID != 0 {
		existing, err := s.store.Get(ctx, in.ID)
		if err != nil {
			return model.Graduate{}, err
		}
		g.ID = existing.ID
		g.Title = existing.Title
		g.Slug = existing.Slug
		g.Date = existing.Date
		g.DateGMT = existing.DateGMT
	} else {
		g.Date = now.In(s.location)
		g.DateGMT = now.UTC()
	}
	g.Modified = now.In(s.location)
	g.ModifiedGMT = now.UTC()

	g.DeriveTitle()
	if g.Title == "" {
		return model.Graduate{}, fmt.Errorf("%w: first or last name is required", ErrInvalidGraduate)
	}

	if g.ID == 0 {
		return s.create(ctx, g)
	}

	if g.Slug == "" {
		slug, err := s.uniqueSlug(ctx, Slugify(g.Title), g.ID)
		if err != nil {
			return model.Graduate{}, err
		}
		g.Slug = slug
	}
	if err := s.store.Update(ctx, g); err != nil {
		return model.Graduate{}, err
	}
	return g, nil
}

func (s *GraduateService) create(ctx context.Context, g model.Graduate) (model.Graduate, error) {
	base := Slugify(g.Title)
	for attempt := 1; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, base, 0)
		if err != nil {
			return model.Graduate{}, err
		}
		g.Slug = slug

		created, err := s.store.Create(ctx, g)
		if errors.Is(err, model.ErrSlugTaken) && attempt < createAttempts {
			continue
		}
		return created, err
	}
}

// uniqueSlug returns base, or the first of base-2, base-3, ... that no
// graduate other than id uses. An empty base stays empty.
func (s *GraduateService) uniqueSlug(ctx context.Context, base string, id int64) (string, error) {
	if base == "" {
		return "", nil
	}

	candidate := base
	for n := 2; ; n++ {
		taken, err := s.store.SlugExists(ctx, candidate, id)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// Get returns a single graduate.
func (s *GraduateService) Get(ctx context.Context, id int64) (*model.Graduate, error) {
	return s.store.Get(ctx, id)
}

// ListForAdmin returns every graduate regardless of status, newest first.
func (s *GraduateService) ListForAdmin(ctx context.Context) ([]model.Graduate, error) {
	res, err := s.store.Query(ctx, model.EntityQuery{
		PostType: model.PostTypeGraduate,
		PerPage:  -1,
		OrderBy:  model.OrderByDate,
		Order:    model.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("list graduates: %w", err)
	}
	return res.Posts, nil
}

// ListPublished returns every published graduate, oldest first. This backs
// the public graduates_list listing.
func (s *GraduateService) ListPublished(ctx context.Context) ([]model.Graduate, error) {
	res, err := s.store.Query(ctx, model.EntityQuery{
		PostType: model.PostTypeGraduate,
		Status:   model.PostStatusPublish,
		PerPage:  -1,
		OrderBy:  model.OrderByDate,
		Order:    model.SortAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("list published graduates: %w", err)
	}
	return res.Posts, nil
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
