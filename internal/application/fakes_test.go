package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// --- In-memory settings store ---

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *memSettings) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *memSettings) SetIfAbsent(_ context.Context, name, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[name]; ok {
		return v, nil
	}
	m.values[name] = value
	return value, nil
}

func (m *memSettings) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

func (m *memSettings) raw(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok
}

// --- In-memory graduate store ---

type memGraduates struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]model.Graduate
	queryErr error
	queries  []model.EntityQuery

	// createErrs are returned by successive Create calls before any insert happens.
	createErrs []error
}

func newMemGraduates() *memGraduates {
	return &memGraduates{nextID: 1, rows: make(map[int64]model.Graduate)}
}

func (m *memGraduates) Create(_ context.Context, g model.Graduate) (model.Graduate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		return model.Graduate{}, err
	}
	g.ID = m.nextID
	m.nextID++
	m.rows[g.ID] = g
	return g, nil
}

func (m *memGraduates) Update(_ context.Context, g model.Graduate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[g.ID]; !ok {
		return model.ErrNotFound
	}
	m.rows[g.ID] = g
	return nil
}

func (m *memGraduates) Get(_ context.Context, id int64) (*model.Graduate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &g, nil
}

func (m *memGraduates) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, g := range m.rows {
		if id != excludeID && g.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memGraduates) Query(_ context.Context, q model.EntityQuery) (model.EntityQueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.queryErr != nil {
		return model.EntityQueryResult{}, m.queryErr
	}

	var matched []model.Graduate
	for _, g := range m.rows {
		if q.Status != "" && g.Status != q.Status {
			continue
		}
		if q.SearchTerm != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(q.SearchTerm)) {
			continue
		}
		matched = append(matched, g)
	}
	less := func(a, b model.Graduate) bool {
		switch q.OrderBy {
		case model.OrderByDate:
			return a.Date.Before(b.Date)
		case model.OrderByID:
			return a.ID < b.ID
		default:
			return a.Title < b.Title
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Order == model.SortDesc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	res := model.EntityQueryResult{FoundCount: len(matched), Posts: []model.Graduate{}}
	if q.PerPage < 0 {
		res.Posts = matched
		return res, nil
	}
	start := (q.Page - 1) * q.PerPage
	if start >= len(matched) {
		return res, nil
	}
	end := min(start+q.PerPage, len(matched))
	res.Posts = matched[start:end]
	res.MaxPages = model.TotalPagesFor(len(matched), q.PerPage)
	return res, nil
}

// --- In-memory capability store ---

type memCaps struct {
	mu     sync.Mutex
	roles  map[string]map[string]bool
	hasErr error
}

func newMemCaps() *memCaps {
	return &memCaps{roles: make(map[string]map[string]bool)}
}

func (m *memCaps) Grant(_ context.Context, role string, caps []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[role] == nil {
		m.roles[role] = make(map[string]bool)
	}
	for _, c := range caps {
		m.roles[role][c] = true
	}
	return nil
}

func (m *memCaps) Revoke(_ context.Context, role string, caps []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range caps {
		delete(m.roles[role], c)
	}
	return nil
}

func (m *memCaps) Has(_ context.Context, role, capability string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasErr != nil {
		return false, m.hasErr
	}
	return m.roles[role][capability], nil
}

func (m *memCaps) ListByRole(_ context.Context, role string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.roles[role]))
	for c := range m.roles[role] {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingReader fails every read, standing in for an exhausted entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func newTestCredentialManager(settings *memSettings) *CredentialManager {
	return NewCredentialManager(NewSecretStore(settings, "test-salt"), NewCredentialCipher(), discardLogger())
}
