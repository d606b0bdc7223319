package web

import "embed"

// StaticFS holds the embedded stylesheet served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
