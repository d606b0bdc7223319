package templates

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/graduates/internal/adapter/driving/web/viewmodel"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGraduatesList_Golden(t *testing.T) {
	tests := []struct {
		name      string
		graduates []vm.PublicGraduateViewModel
	}{
		{name: "graduates_list_empty", graduates: nil},
		{
			name: "graduates_list_two",
			graduates: []vm.PublicGraduateViewModel{
				{Title: "Ada Lovelace", FirstName: "Ada", LastName: "Lovelace"},
				{Title: "Miles O'Brien", FirstName: "Miles", LastName: "O'Brien & Co"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, GraduatesList(tc.graduates).Render(context.Background(), &buf))
			newGolden(t).Assert(t, tc.name, buf.Bytes())
		})
	}
}

func TestGraduatesList_EscapesMarkup(t *testing.T) {
	var buf bytes.Buffer
	err := GraduatesList([]vm.PublicGraduateViewModel{
		{Title: "<script>alert(1)</script>", FirstName: "<b>", LastName: "x"},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestAPISettings_Disabled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, APISettings(vm.APISettingsViewModel{
		HeaderName: "X-Graduates-API-Key",
		CSRFToken:  "tok",
	}).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "Enable API security to view or generate an API key.")
	assert.NotContains(t, out, "Generate New Key")
	assert.NotContains(t, out, " checked")
	assert.Contains(t, out, `name="_graduates_nonce" value="tok"`)
}

func TestAPISettings_EnabledWithoutKey(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, APISettings(vm.APISettingsViewModel{
		Enabled:    true,
		HeaderName: "X-Graduates-API-Key",
	}).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "No API key generated yet.")
	assert.Contains(t, out, "Generate New Key")
	assert.Contains(t, out, " checked")
}

func TestAPISettings_EnabledWithKey(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, APISettings(vm.APISettingsViewModel{
		Enabled:    true,
		APIKey:     "grad_0123",
		HeaderName: "X-Graduates-API-Key",
		ExampleURL: "https://school.example/graduates/v1/graduates",
		Notices:    []vm.Notice{{Kind: "success", Message: "API key generated successfully."}},
	}).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `id="graduates_api_key" value="grad_0123" readonly`)
	assert.Contains(t, out, "curl -H &#34;X-Graduates-API-Key: grad_0123&#34; https://school.example/graduates/v1/graduates")
	assert.Contains(t, out, `<div class="notice notice-success"><p>API key generated successfully.</p></div>`)
}

func TestGraduateList_Rows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GraduateList(vm.GraduateListViewModel{
		NewPath: "/admin/graduates/new",
		Rows: []vm.GraduateRowViewModel{
			{ID: 7, Photo: "—", FullName: "Ada Lovelace", Description: "Analyst", Status: "publish", Date: "2024/01/01 at 9:00 am", EditPath: "/admin/graduates/7/edit"},
		},
	}).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `<tr id="graduate-7">`)
	assert.Contains(t, out, `<a href="/admin/graduates/7/edit">Ada Lovelace</a>`)
	assert.Contains(t, out, `<td class="column-photo">—</td>`)
	assert.NotContains(t, out, "no-items")
}

func TestGraduateList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GraduateList(vm.GraduateListViewModel{}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No graduates found.")
}

func TestGraduateForm_SelectsStatusAndEscapesContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GraduateForm(vm.GraduateFormViewModel{
		Heading:    "Edit Graduate",
		ActionPath: "/admin/graduates/3",
		FirstName:  "Ada",
		Content:    "</textarea><script>",
		Status:     "draft",
		Statuses:   []string{"publish", "draft", "private"},
	}).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `action="/admin/graduates/3"`)
	assert.Contains(t, out, `<option value="draft" selected>draft</option>`)
	assert.Contains(t, out, `name="graduate_first_name" value="Ada"`)
	assert.Equal(t, 2, strings.Count(out, "</textarea>"))
}

func TestLayout_WrapsBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Layout("A & B", GraduatesList(nil)).Render(context.Background(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<title>A &amp; B</title>")
	assert.True(t, strings.HasSuffix(out, `<body><div class="graduates-empty">No graduates found.</div></body></html>`))
}

func TestTemplSources_HaveGeneratedCode(t *testing.T) {
	sources, err := filepath.Glob("*.templ")
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	for _, src := range sources {
		generated := strings.TrimSuffix(src, ".templ") + "_templ.go"
		data, err := os.ReadFile(generated)
		require.NoError(t, err, "run go generate for %s", src)
		assert.True(t, bytes.HasPrefix(data, []byte("// Code generated by templ - DO NOT EDIT.")), generated)
		assert.Contains(t, string(data), "FileName: `"+src+"`", generated)
	}
}
