package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/scaffold"
)

const contentDir = "testdata/content"

var crawled = []string{
	"component/content/.content.xml",
	"component/content/a/.content.xml",
	"component/content/a/a.html",
	"component/content/b/.content.xml",
	"component/content/b/_cq_dialog.xml",
	"component/content/b/b.html",
	"component/structure/.content.xml",
	"component/structure/homepage/.content.xml",
	"component/structure/page/.content.xml",
}

func TestCrawl(t *testing.T) {
	cases := []struct {
		name string
		root string
	}{
		{name: "no trailing separator", root: contentDir},
		{name: "trailing separator", root: contentDir + string(filepath.Separator)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Crawl(c.root)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(crawled, trim(t, got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCrawlNoDirs(t *testing.T) {
	got, err := Crawl(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range got {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.IsDir() {
			t.Errorf("directory %s in crawl result", path)
		}
	}
}

func TestCrawlNotFound(t *testing.T) {
	_, err := Crawl(filepath.Join(t.TempDir(), "nonexistent"))
	if !scaffold.Is(err, scaffold.NotFound) {
		t.Errorf("got error %v, want kind %v", err, scaffold.NotFound)
	}
}

func TestCrawlNotDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.html")
	if err := os.WriteFile(file, []byte("<div/>"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, root := range []string{file, file + string(filepath.Separator)} {
		_, err := Crawl(root)
		if !scaffold.Is(err, scaffold.NotFound) {
			t.Errorf("Crawl(%s): got error %v, want kind %v", root, err, scaffold.NotFound)
		}
	}
}

func TestSortByName(t *testing.T) {
	paths, err := Crawl(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	SortByName(paths)

	want := []string{
		"component/content/.content.xml",
		"component/content/a/.content.xml",
		"component/content/b/.content.xml",
		"component/structure/.content.xml",
		"component/structure/homepage/.content.xml",
		"component/structure/page/.content.xml",
		"component/content/b/_cq_dialog.xml",
		"component/content/a/a.html",
		"component/content/b/b.html",
	}
	if diff := cmp.Diff(want, trim(t, paths)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByNameDotFirst(t *testing.T) {
	paths := []string{"/x/zeta.html", "/x/.content.xml", "/x/alpha.html", "/x/.vlt"}
	SortByName(paths)

	want := []string{"/x/.content.xml", "/x/.vlt", "/x/alpha.html", "/x/zeta.html"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByDepthStable(t *testing.T) {
	paths := []string{
		"/r/a/b/c",
		"/r/z",
		"/r/a/y",
		"/r/b",
		"/r/a/x",
		"/r/a",
	}
	SortByDepth(paths)

	want := []string{
		"/r/z",
		"/r/b",
		"/r/a",
		"/r/a/y",
		"/r/a/x",
		"/r/a/b/c",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(paths); i++ {
		if Depth(paths[i]) < Depth(paths[i-1]) {
			t.Errorf("depth decreases at %d: %s after %s", i, paths[i], paths[i-1])
		}
	}
}

func TestOrder(t *testing.T) {
	paths, err := Crawl(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	got := Order(paths)

	want := []string{
		"component/content/.content.xml",
		"component/structure/.content.xml",
		"component/content/a/.content.xml",
		"component/content/b/.content.xml",
		"component/structure/homepage/.content.xml",
		"component/structure/page/.content.xml",
		"component/content/b/_cq_dialog.xml",
		"component/content/a/a.html",
		"component/content/b/b.html",
	}
	if diff := cmp.Diff(want, trim(t, got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// Every descriptor must follow its parent directory's descriptor.
	seen := make(map[string]bool)
	for _, path := range got {
		if filepath.Base(path) != ".content.xml" {
			continue
		}
		dir := filepath.Dir(path)
		parent := filepath.Join(filepath.Dir(dir), ".content.xml")
		if _, err := os.Stat(parent); err == nil && !seen[parent] {
			t.Errorf("%s precedes its parent descriptor %s", path, parent)
		}
		seen[path] = true
	}
}

// Trim strips everything before the "component/" segment
// and converts to slash form,
// so results compare the same on any machine.
func trim(t *testing.T, paths []string) []string {
	t.Helper()

	result := make([]string, 0, len(paths))
	for _, path := range paths {
		path = filepath.ToSlash(path)
		idx := strings.LastIndex(path, "component/")
		if idx < 0 {
			t.Fatalf("unexpected path %s", path)
		}
		result = append(result, path[idx:])
	}
	return result
}
