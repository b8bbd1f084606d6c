package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
	"github.com/bobg/scaffold/tree"
)

// Getter is implemented by repositories that can report what they hold.
// Get returns the data last submitted for the node at the given repository path,
// or an error of kind scaffold.NotFound.
type Getter interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Submit writes the package from Package
// and submits every file of it to s in import order,
// returning the submitted paths.
func Submit(ctx context.Context, t *testing.T, s scaffold.Submitter) []string {
	t.Helper()

	paths, err := tree.Crawl(Package(t))
	if err != nil {
		t.Fatal(err)
	}
	paths = tree.Order(paths)
	for _, path := range paths {
		if err := s.Submit(ctx, path); err != nil {
			t.Fatalf("submitting %s: %s", path, err)
		}
	}
	return paths
}

// SubmitGet submits the package from Package to s
// and then checks that s reports the content of each file at the file's repository path.
// It also checks that a node never submitted is not found.
func SubmitGet(ctx context.Context, t *testing.T, s interface {
	scaffold.Submitter
	Getter
}) {
	t.Helper()

	for _, path := range Submit(ctx, t, s) {
		node, err := repo.Locate(path)
		if err != nil {
			t.Fatal(err)
		}
		want, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, node.Path)
		if err != nil {
			t.Errorf("getting %s: %s", node.Path, err)
			continue
		}
		if string(got) != string(want) {
			t.Errorf("%s: got %q, want %q", node.Path, got, want)
		}
	}

	_, err := s.Get(ctx, "/apps/site/no-such-node")
	if !scaffold.Is(err, scaffold.NotFound) {
		t.Errorf("got error %v for a missing node, want kind %v", err, scaffold.NotFound)
	}
}

// Resubmit checks that submitting changed content for an existing node
// replaces what the repository holds.
func Resubmit(ctx context.Context, t *testing.T, s interface {
	scaffold.Submitter
	Getter
}) {
	t.Helper()

	paths := Submit(ctx, t, s)

	var target string
	for _, path := range paths {
		if filepath.Ext(path) == ".css" {
			target = path
		}
	}
	const updated = ".hero { color: blue; }\n"
	if err := os.WriteFile(target, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(ctx, target); err != nil {
		t.Fatal(err)
	}

	node, err := repo.Locate(target)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, node.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != updated {
		t.Errorf("got %q after resubmitting, want %q", got, updated)
	}
}
