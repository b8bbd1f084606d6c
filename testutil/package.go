// Package testutil holds checks shared by the repository backends' tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// PackageFiles is the content of the package written by Package,
// keyed by slash-separated path relative to its jcr_root.
var PackageFiles = map[string]string{
	"apps/site/.content.xml":                                    `<jcr:root jcr:primaryType="sling:Folder"/>`,
	"apps/site/components/.content.xml":                         `<jcr:root jcr:primaryType="sling:Folder"/>`,
	"apps/site/components/content/.content.xml":                 `<jcr:root jcr:primaryType="sling:Folder"/>`,
	"apps/site/components/content/hero/.content.xml":            `<jcr:root jcr:primaryType="cq:Component" jcr:title="hero"/>`,
	"apps/site/components/content/hero/hero.html":               `<div class="hero">${properties.text}</div>`,
	"apps/site/components/content/hero/_cq_dialog/.content.xml": `<jcr:root jcr:primaryType="nt:unstructured" jcr:title="hero"/>`,
	"apps/site/components/content/hero/clientlibs/.content.xml": `<jcr:root jcr:primaryType="cq:ClientLibraryFolder" categories="[site.hero]"/>`,
	"apps/site/components/content/hero/clientlibs/hero.css":     ".hero { color: red; }\n",
}

// PackageSeed lists the repository nodes that must already exist
// for the package written by Package to import.
var PackageSeed = []string{"/apps"}

// Package writes PackageFiles beneath a fresh temporary directory
// and returns the path of its jcr_root.
func Package(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "jcr_root")

	names := make([]string, 0, len(PackageFiles))
	for name := range PackageFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(PackageFiles[name]), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}
