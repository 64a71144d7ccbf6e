package golang

import (
	"golang.org/x/tools/imports"
)

// generatedOptions gofmt the source and drop imports the templates declare
// but the rendered file does not use.
var generatedOptions = &imports.Options{
	Comments:  true,
	TabIndent: true,
	TabWidth:  8,
}

// Format post-processes a rendered Go file. No filename is passed, so no
// sibling files are consulted.
func Format(src []byte) ([]byte, error) {
	return imports.Process("", src, generatedOptions)
}
