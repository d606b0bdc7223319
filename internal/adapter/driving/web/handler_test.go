package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// --- Mock implementations ---

type mockSettingsStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *mockSettingsStore) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *mockSettingsStore) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *mockSettingsStore) SetIfAbsent(_ context.Context, name, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[name]; ok {
		return v, nil
	}
	m.values[name] = value
	return value, nil
}

func (m *mockSettingsStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

type mockGraduateStore struct {
	graduates []model.Graduate
	err       error
}

func (m *mockGraduateStore) Create(_ context.Context, g model.Graduate) (model.Graduate, error) {
	g.ID = int64(len(m.graduates) + 1)
	m.graduates = append(m.graduates, g)
	return g, nil
}

func (m *mockGraduateStore) Update(_ context.Context, g model.Graduate) error {
	for i := range m.graduates {
		if m.graduates[i].ID == g.ID {
			m.graduates[i] = g
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *mockGraduateStore) Get(_ context.Context, id int64) (*model.Graduate, error) {
	for _, g := range m.graduates {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *mockGraduateStore) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	for _, g := range m.graduates {
		if g.ID != excludeID && g.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGraduateStore) Query(_ context.Context, q model.EntityQuery) (model.EntityQueryResult, error) {
	if m.err != nil {
		return model.EntityQueryResult{}, m.err
	}
	posts := []model.Graduate{}
	for _, g := range m.graduates {
		if q.Status == "" || g.Status == q.Status {
			posts = append(posts, g)
		}
	}
	return model.EntityQueryResult{Posts: posts, FoundCount: len(posts), MaxPages: 1}, nil
}

type mockCapabilityStore struct {
	mu    sync.Mutex
	roles map[string]map[string]bool
	err   error
}

func (m *mockCapabilityStore) Grant(_ context.Context, role string, caps []string) error {
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

func (m *mockCapabilityStore) Revoke(_ context.Context, role string, caps []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range caps {
		delete(m.roles[role], c)
	}
	return nil
}

func (m *mockCapabilityStore) Has(_ context.Context, role, capability string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.roles[role][capability], nil
}

func (m *mockCapabilityStore) ListByRole(_ context.Context, role string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	caps := []string{}
	for c := range m.roles[role] {
		caps = append(caps, c)
	}
	return caps, nil
}

// --- Test fixture ---

const testAdminToken = "operator-secret-0123456789"

type webFixture struct {
	store       *mockGraduateStore
	caps        *mockCapabilityStore
	credentials *application.CredentialManager
	mux         *http.ServeMux
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	return newWebFixtureWithToken(t, testAdminToken)
}

// newWebFixtureWithToken wires the handler with the given operator token and
// grants the graduate capabilities to the operator role.
func newWebFixtureWithToken(t *testing.T, adminToken string) *webFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings := &mockSettingsStore{values: make(map[string]string)}
	store := &mockGraduateStore{}
	caps := &mockCapabilityStore{roles: make(map[string]map[string]bool)}
	require.NoError(t, caps.Grant(context.Background(), model.OperatorRole, model.GraduateCapabilities()))

	creds := application.NewCredentialManager(
		application.NewSecretStore(settings, "salt"),
		application.NewCredentialCipher(),
		logger,
	)
	h := NewHandler(
		creds,
		application.NewGraduateService(store, nil),
		application.NewOperatorGate(adminToken, caps),
		"https://school.example",
		logger,
	)

	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return &webFixture{store: store, caps: caps, credentials: creds, mux: mux}
}

// serve sends req as-is, without operator credentials.
func (f *webFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

// get requests target as the authenticated operator.
func (f *webFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.SetBasicAuth("operator", testAdminToken)
	return f.serve(req)
}

// post submits form as the authenticated operator, with a matching CSRF
// cookie unless token is empty.
func (f *webFixture) post(t *testing.T, target string, form url.Values, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := formRequest(target, form, token)
	req.SetBasicAuth("operator", testAdminToken)
	return f.serve(req)
}

func formRequest(target string, form url.Values, token string) *http.Request {
	if token != "" {
		form.Set(csrfFormField, token)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	}
	return req
}

// --- API settings ---

func TestAPISettingsPage_IssuesCSRFCookie(t *testing.T) {
	f := newWebFixture(t)

	rec := f.get(t, "/admin/api-settings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Contains(t, rec.Body.String(), `value="`+cookies[0].Value+`"`)
	assert.Contains(t, rec.Body.String(), "Enable API security to view or generate an API key.")
}

func TestAPISettingsPage_ShowsKeyWhenEnabled(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()
	require.NoError(t, f.credentials.SetEnabled(ctx, true))
	key, err := f.credentials.Regenerate(ctx)
	require.NoError(t, err)

	rec := f.get(t, "/admin/api-settings?key-generated=1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, key)
	assert.Contains(t, body, "https://school.example/graduates/v1/graduates")
	assert.Contains(t, body, "API key generated successfully.")
	assert.Contains(t, body, "Generate New Key")
}

func TestAPISettingsPage_SettingsUpdatedNotice(t *testing.T) {
	f := newWebFixture(t)

	rec := f.get(t, "/admin/api-settings?settings-updated=true")
	assert.Contains(t, rec.Body.String(), "API settings updated successfully.")
}

func TestSaveAPISettings(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()

	rec := f.post(t, "/admin/api-settings", url.Values{"graduates_api_enabled": {"1"}}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/api-settings?settings-updated=true", rec.Header().Get("Location"))

	enabled, err := f.credentials.IsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	rec = f.post(t, "/admin/api-settings", url.Values{}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	enabled, err = f.credentials.IsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSaveAPISettings_RejectsMissingCSRF(t *testing.T) {
	f := newWebFixture(t)

	rec := f.post(t, "/admin/api-settings", url.Values{"graduates_api_enabled": {"1"}}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	enabled, err := f.credentials.IsEnabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSaveAPISettings_RejectsMismatchedCSRF(t *testing.T) {
	f := newWebFixture(t)

	form := url.Values{"graduates_api_enabled": {"1"}, csrfFormField: {"form-token"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/api-settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "cookie-token"})
	req.SetBasicAuth("operator", testAdminToken)
	rec := f.serve(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Security check failed.\n", rec.Body.String())
}

func TestGenerateAPIKey(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()
	require.NoError(t, f.credentials.SetEnabled(ctx, true))
	old, err := f.credentials.Regenerate(ctx)
	require.NoError(t, err)

	rec := f.post(t, "/admin/api-settings/generate", url.Values{}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/api-settings?key-generated=1", rec.Header().Get("Location"))

	current, err := f.credentials.Credential(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, current)
	assert.NotEqual(t, old, current)
}

// --- Graduates admin ---

func TestCreateGraduate(t *testing.T) {
	f := newWebFixture(t)

	rec := f.post(t, "/admin/graduates", url.Values{
		"graduate_first_name":     {" Ada "},
		"graduate_last_name":      {"Lovelace"},
		"graduate_content":        {"First programmer."},
		"graduate_status":         {"publish"},
		"graduate_featured_media": {"42"},
	}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/graduates?saved=1", rec.Header().Get("Location"))

	require.Len(t, f.store.graduates, 1)
	g := f.store.graduates[0]
	assert.Equal(t, "Ada Lovelace", g.Title)
	assert.Equal(t, int64(42), g.FeaturedMediaID)
	assert.Equal(t, "ada-lovelace", g.Slug)
}

func TestCreateGraduate_MissingNameRerendersForm(t *testing.T) {
	f := newWebFixture(t)

	rec := f.post(t, "/admin/graduates", url.Values{"graduate_content": {"Kept content"}}, "tok")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a first or last name.")
	assert.Contains(t, rec.Body.String(), "Kept content")
	assert.Empty(t, f.store.graduates)
}

func TestCreateGraduate_BadMediaID(t *testing.T) {
	f := newWebFixture(t)

	rec := f.post(t, "/admin/graduates", url.Values{
		"graduate_first_name":     {"Ada"},
		"graduate_featured_media": {"photo.jpg"},
	}, "tok")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Photo must be a media ID.")
}

func TestUpdateGraduate(t *testing.T) {
	f := newWebFixture(t)
	_, _ = f.store.Create(context.Background(), model.Graduate{
		Title: "Ada Byron", FirstName: "Ada", LastName: "Byron", Status: model.PostStatusPublish, Slug: "ada-byron",
	})

	rec := f.get(t, "/admin/graduates/1/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Byron"`)

	rec = f.post(t, "/admin/graduates/1", url.Values{
		"graduate_first_name": {"Ada"},
		"graduate_last_name":  {"Lovelace"},
		"graduate_status":     {"draft"},
	}, "tok")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, "Ada Lovelace", f.store.graduates[0].Title)
	assert.Equal(t, model.PostStatusDraft, f.store.graduates[0].Status)
}

func TestEditGraduate_NotFound(t *testing.T) {
	f := newWebFixture(t)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/admin/graduates/9/edit").Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/admin/graduates/x/edit").Code)
}

func TestAdminGraduates_Columns(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()
	_, _ = f.store.Create(ctx, model.Graduate{
		Title: "Ada Lovelace", FirstName: "Ada", LastName: "Lovelace",
		Content:         "<p>" + strings.Repeat("a", 60) + "</p>",
		Status:          model.PostStatusPublish,
		FeaturedMediaID: 12,
		Date:            time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC),
	})
	_, _ = f.store.Create(ctx, model.Graduate{Title: "Untitled", Status: model.PostStatusDraft})

	rec := f.get(t, "/admin/graduates?saved=1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Graduate saved.")
	assert.Contains(t, body, `<td class="column-photo">12</td>`)
	assert.Contains(t, body, `<td class="column-description">`+strings.Repeat("a", 50)+`</td>`)
	assert.Contains(t, body, "2024/01/02 at 3:04 pm")
	assert.Contains(t, body, `<td class="column-photo">—</td>`)
	assert.Contains(t, body, `<td class="column-description">—</td>`)
}

func TestAdminGraduates_DescriptionDecodesEntities(t *testing.T) {
	f := newWebFixture(t)
	_, _ = f.store.Create(context.Background(), model.Graduate{
		Title: "Tom", Content: "<p>Tom &amp; Jerry</p>", Status: model.PostStatusPublish,
	})

	rec := f.get(t, "/admin/graduates")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<td class="column-description">Tom &amp; Jerry</td>`)
	assert.NotContains(t, body, "&amp;amp;")
}

func TestNewGraduateForm(t *testing.T) {
	f := newWebFixture(t)

	rec := f.get(t, "/admin/graduates/new")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add New Graduate")
	assert.Contains(t, rec.Body.String(), `action="/admin/graduates"`)
}

// --- Operator authentication ---

var adminRoutes = []struct {
	method string
	target string
}{
	{http.MethodGet, "/admin/api-settings"},
	{http.MethodPost, "/admin/api-settings"},
	{http.MethodPost, "/admin/api-settings/generate"},
	{http.MethodGet, "/admin/graduates"},
	{http.MethodGet, "/admin/graduates/new"},
	{http.MethodPost, "/admin/graduates"},
	{http.MethodGet, "/admin/graduates/1/edit"},
	{http.MethodPost, "/admin/graduates/1"},
}

func adminRequest(method, target string) *http.Request {
	if method == http.MethodPost {
		return formRequest(target, url.Values{
			"graduates_api_enabled": {"1"},
			"graduate_first_name":   {"Mallory"},
		}, "tok")
	}
	return httptest.NewRequest(method, target, nil)
}

func TestAdminRoutes_RejectAnonymous(t *testing.T) {
	for _, route := range adminRoutes {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			f := newWebFixture(t)
			_, _ = f.store.Create(context.Background(), model.Graduate{Title: "Ada Lovelace", Status: model.PostStatusPublish})

			rec := f.serve(adminRequest(route.method, route.target))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="graduates admin"`)
			assert.Empty(t, rec.Result().Cookies(), "no CSRF cookie before authentication")
			assert.Len(t, f.store.graduates, 1)
			assert.Equal(t, "Ada Lovelace", f.store.graduates[0].Title)
		})
	}
}

func TestAdminRoutes_RejectWrongToken(t *testing.T) {
	for _, route := range adminRoutes {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			f := newWebFixture(t)
			req := adminRequest(route.method, route.target)
			req.SetBasicAuth("operator", testAdminToken+"x")

			assert.Equal(t, http.StatusUnauthorized, f.serve(req).Code)
		})
	}
}

func TestAPISettingsPage_AnonymousDoesNotLeakKey(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()
	require.NoError(t, f.credentials.SetEnabled(ctx, true))
	key, err := f.credentials.Regenerate(ctx)
	require.NoError(t, err)

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/admin/api-settings", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), key)
}

func TestSaveAPISettings_AnonymousCannotDisableSecurity(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()
	require.NoError(t, f.credentials.SetEnabled(ctx, true))
	key, err := f.credentials.Regenerate(ctx)
	require.NoError(t, err)

	rec := f.serve(formRequest("/admin/api-settings", url.Values{}, "tok"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.serve(formRequest("/admin/api-settings/generate", url.Values{}, "tok"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	enabled, err := f.credentials.IsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	current, err := f.credentials.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, current)
}

func TestAdminRoutes_AcceptBearerToken(t *testing.T) {
	f := newWebFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/graduates", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)

	assert.Equal(t, http.StatusOK, f.serve(req).Code)
}

func TestAdminRoutes_DisabledWithoutToken(t *testing.T) {
	f := newWebFixtureWithToken(t, "")

	for _, route := range adminRoutes {
		req := adminRequest(route.method, route.target)
		req.SetBasicAuth("operator", "")
		rec := f.serve(req)
		assert.Equal(t, http.StatusForbidden, rec.Code, route.target)
		assert.Contains(t, rec.Body.String(), "Sorry, you are not allowed to access this page.")
	}
	assert.Empty(t, f.store.graduates)
}

func TestGraduateRoutes_RequireEditCapability(t *testing.T) {
	f := newWebFixture(t)
	require.NoError(t, f.caps.Revoke(context.Background(), model.OperatorRole, model.GraduateCapabilities()))

	assert.Equal(t, http.StatusForbidden, f.get(t, "/admin/graduates").Code)
	rec := f.post(t, "/admin/graduates", url.Values{"graduate_first_name": {"Ada"}}, "tok")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.store.graduates)

	// API settings need only the operator token.
	assert.Equal(t, http.StatusOK, f.get(t, "/admin/api-settings").Code)
}

func TestGraduateRoutes_CapabilityStoreError(t *testing.T) {
	f := newWebFixture(t)
	f.caps.err = errors.New("database is locked")

	assert.Equal(t, http.StatusInternalServerError, f.get(t, "/admin/graduates").Code)
}

func TestPublicRoutes_NeedNoOperator(t *testing.T) {
	f := newWebFixtureWithToken(t, "")

	for _, target := range []string{"/graduates", "/", "/static/graduates.css"} {
		rec := f.serve(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

// --- Public listing ---

func TestPublicGraduates(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()

	rec := f.get(t, "/graduates")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="graduates-empty">No graduates found.</div>`)

	_, _ = f.store.Create(ctx, model.Graduate{Title: "Ada Lovelace", FirstName: "Ada", LastName: "Lovelace", Status: model.PostStatusPublish})
	_, _ = f.store.Create(ctx, model.Graduate{Title: "Hidden", Status: model.PostStatusDraft})

	rec = f.get(t, "/graduates")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<li class="graduate"><strong>Ada Lovelace</strong> — Ada Lovelace</li>`)
	assert.NotContains(t, body, "Hidden")
}

func TestPublicGraduates_StoreError(t *testing.T) {
	f := newWebFixture(t)
	f.store.err = errors.New("boom")

	rec := f.get(t, "/graduates")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	f := newWebFixture(t)

	rec := f.get(t, "/static/graduates.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".graduates-table")
}
