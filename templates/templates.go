// Package templates holds the built-in component templates.
package templates

import (
	"embed"
	"io/fs"
	"sort"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
)

// The all: prefix keeps dot-files such as .content.xml.
//
//go:embed all:content all:structure
var files embed.FS

// Types lists the component types with a built-in template.
func Types() []string {
	entries, _ := fs.ReadDir(files, ".")
	var result []string
	for _, e := range entries {
		if e.IsDir() {
			result = append(result, e.Name())
		}
	}
	sort.Strings(result)
	return result
}

// For returns the template for the given component type.
// An unknown type is an error of kind scaffold.NotFound.
func For(typ string) (fs.FS, error) {
	if typ == "" || typ == "." {
		return nil, scaffold.E(scaffold.NotFound, typ, errors.New("no component type given"))
	}
	if _, err := fs.Stat(files, typ); err != nil {
		return nil, scaffold.E(scaffold.NotFound, typ, errors.Errorf("no template for component type %q (have %v)", typ, Types()))
	}
	return fs.Sub(files, typ)
}
