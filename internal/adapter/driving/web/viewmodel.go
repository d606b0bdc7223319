package web

import (
	"fmt"
	"strconv"

	vm "github.com/ericfisherdev/graduates/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// placeholder fills empty admin columns.
const placeholder = "—"

// adminDateLayout is the date format of the admin list.
const adminDateLayout = "2006/01/02 at 3:04 pm"

// toGraduateRowViewModel converts a graduate to its admin list row.
func toGraduateRowViewModel(g model.Graduate) vm.GraduateRowViewModel {
	photo := placeholder
	if g.FeaturedMediaID > 0 {
		photo = strconv.FormatInt(g.FeaturedMediaID, 10)
	}

	description := application.ColumnExcerpt(application.RenderContent(g.Content))
	if description == "" {
		description = placeholder
	}

	fullName := g.FullName()
	if fullName == "" {
		fullName = placeholder
	}

	date := ""
	if !g.Date.IsZero() {
		date = g.Date.Format(adminDateLayout)
	}

	return vm.GraduateRowViewModel{
		ID:          g.ID,
		Photo:       photo,
		FullName:    fullName,
		Description: description,
		Status:      string(g.Status),
		Date:        date,
		EditPath:    fmt.Sprintf("/admin/graduates/%d/edit", g.ID),
	}
}

// toGraduateRowViewModels converts graduates to admin rows, never returning nil.
func toGraduateRowViewModels(graduates []model.Graduate) []vm.GraduateRowViewModel {
	rows := make([]vm.GraduateRowViewModel, 0, len(graduates))
	for _, g := range graduates {
		rows = append(rows, toGraduateRowViewModel(g))
	}
	return rows
}

// toGraduateFormViewModel fills the editor form from an existing graduate.
func toGraduateFormViewModel(g model.Graduate) vm.GraduateFormViewModel {
	media := ""
	if g.FeaturedMediaID > 0 {
		media = strconv.FormatInt(g.FeaturedMediaID, 10)
	}
	return vm.GraduateFormViewModel{
		ID:              g.ID,
		Heading:         "Edit Graduate",
		ActionPath:      fmt.Sprintf("/admin/graduates/%d", g.ID),
		FirstName:       g.FirstName,
		LastName:        g.LastName,
		Content:         g.Content,
		Excerpt:         g.Excerpt,
		Status:          string(g.Status),
		FeaturedMediaID: media,
		Statuses:        statusOptions(),
	}
}

// newGraduateFormViewModel returns an empty editor form.
func newGraduateFormViewModel() vm.GraduateFormViewModel {
	return vm.GraduateFormViewModel{
		Heading:    "Add New Graduate",
		ActionPath: "/admin/graduates",
		Status:     string(model.PostStatusPublish),
		Statuses:   statusOptions(),
	}
}

// toPublicGraduateViewModels converts published graduates to listing entries.
func toPublicGraduateViewModels(graduates []model.Graduate) []vm.PublicGraduateViewModel {
	out := make([]vm.PublicGraduateViewModel, 0, len(graduates))
	for _, g := range graduates {
		out = append(out, vm.PublicGraduateViewModel{
			Title:     g.Title,
			FirstName: g.FirstName,
			LastName:  g.LastName,
		})
	}
	return out
}

func statusOptions() []string {
	return []string{
		string(model.PostStatusPublish),
		string(model.PostStatusDraft),
		string(model.PostStatusPrivate),
	}
}
