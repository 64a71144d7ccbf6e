// Package templates holds the built-in code templates. Files under go/ are
// addressed by their relative path, e.g. "go/types.tmpl".
package templates

import "embed"

//go:embed go/*.tmpl
var FS embed.FS
