// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// Notice is a dismissible status message shown above a form.
type Notice struct {
	Kind    string // "success" or "error"
	Message string
}

// APISettingsViewModel holds everything the API settings screen renders.
type APISettingsViewModel struct {
	Enabled      bool
	APIKey       string // decrypted credential; empty when none is stored
	HeaderName   string
	ExampleURL   string
	CSRFToken    string
	Notices      []Notice
	ActionPath   string
	GeneratePath string
}

// GraduateRowViewModel is one row of the admin graduate list.
type GraduateRowViewModel struct {
	ID          int64
	Photo       string // featured media id, or an em dash
	FullName    string
	Description string // first 50 characters of the stripped content, or an em dash
	Status      string
	Date        string
	EditPath    string
}

// GraduateListViewModel holds the admin graduate list.
type GraduateListViewModel struct {
	Rows    []GraduateRowViewModel
	NewPath string
	Notices []Notice
}

// GraduateFormViewModel holds the graduate editor form.
type GraduateFormViewModel struct {
	ID              int64
	Heading         string
	ActionPath      string
	FirstName       string
	LastName        string
	Content         string
	Excerpt         string
	Status          string
	FeaturedMediaID string
	Statuses        []string
	CSRFToken       string
	Notices         []Notice
}

// PublicGraduateViewModel is one entry of the public graduates listing.
type PublicGraduateViewModel struct {
	Title     string
	FirstName string
	LastName  string
}
