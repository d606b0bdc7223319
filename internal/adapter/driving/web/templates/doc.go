// Package templates holds the templ components of the web UI. The *_templ.go
// files are generated from the .templ sources; edit those and regenerate.
package templates

//go:generate go tool templ generate -path .

// CSRFField is the form field carrying the admin CSRF token.
const CSRFField = "_graduates_nonce"
