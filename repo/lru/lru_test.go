package lru

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/scaffold/repo"
	"github.com/bobg/scaffold/repo/mem"
	"github.com/bobg/scaffold/testutil"
)

func TestRepo(t *testing.T) {
	r, err := New(mem.New(), 100)
	if err != nil {
		t.Fatal(err)
	}
	testutil.Submit(context.Background(), t, r)
}

func TestSkipUnchanged(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = mem.New()
	)
	r, err := New(nested, 100)
	if err != nil {
		t.Fatal(err)
	}

	paths := testutil.Submit(ctx, t, r)
	n := len(nested.Calls())
	if n != len(paths) {
		t.Fatalf("got %d nested submissions, want %d", n, len(paths))
	}

	// Nothing changed, nothing passes through.
	for _, path := range paths {
		if err := r.Submit(ctx, path); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(nested.Calls()); got != n {
		t.Errorf("got %d nested submissions after resubmitting unchanged files, want %d", got, n)
	}

	// A changed file passes through.
	changed := paths[len(paths)-1]
	if err := os.WriteFile(changed, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.Submit(ctx, changed); err != nil {
		t.Fatal(err)
	}
	if got := len(nested.Calls()); got != n+1 {
		t.Errorf("got %d nested submissions after a change, want %d", got, n+1)
	}

	// So does a forgotten one.
	r.Forget(paths[0])
	if err := r.Submit(ctx, paths[0]); err != nil {
		t.Fatal(err)
	}
	if got := len(nested.Calls()); got != n+2 {
		t.Errorf("got %d nested submissions after Forget, want %d", got, n+2)
	}
}

func TestDescriptorResubmitsChildren(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = mem.New()
	)
	r, err := New(nested, 100)
	if err != nil {
		t.Fatal(err)
	}

	paths := testutil.Submit(ctx, t, r)
	n := len(nested.Calls())

	var (
		descriptor string
		under      []string
	)
	for _, path := range paths {
		if strings.HasSuffix(path, filepath.Join("hero", repo.Descriptor)) {
			descriptor = path
		}
	}
	if descriptor == "" {
		t.Fatal("no hero descriptor in package")
	}
	heroDir := filepath.Dir(descriptor)
	for _, path := range paths {
		if strings.HasPrefix(path, heroDir+string(filepath.Separator)) {
			under = append(under, path)
		}
	}

	if err := os.WriteFile(descriptor, []byte(`<jcr:root jcr:title="changed"/>`), 0644); err != nil {
		t.Fatal(err)
	}
	for _, path := range under {
		if err := r.Submit(ctx, path); err != nil {
			t.Fatal(err)
		}
	}

	if diff := cmp.Diff(under, nested.Calls()[n:]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// Nothing else changed, so a second pass is skipped entirely.
	for _, path := range under {
		if err := r.Submit(ctx, path); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := len(nested.Calls()), n+len(under); got != want {
		t.Errorf("got %d nested submissions, want %d", got, want)
	}
}

func TestFailureNotRemembered(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = mem.New()
		root   = testutil.Package(t)
		path   = filepath.Join(root, "apps", "site", ".content.xml")
	)
	r, err := New(nested, 10)
	if err != nil {
		t.Fatal(err)
	}

	nested.Strict = true // "/apps" is missing, so this fails
	if err := r.Submit(ctx, path); err == nil {
		t.Fatal("got no error from a failing nested repository")
	}
	nested.Strict = false
	if err := r.Submit(ctx, path); err != nil {
		t.Fatal(err)
	}
	if got := len(nested.Calls()); got != 2 {
		t.Errorf("got %d nested submissions, want 2", got)
	}
}

func TestRegistry(t *testing.T) {
	_, err := repo.Create(context.Background(), "lru", map[string]interface{}{
		"size":   float64(10),
		"nested": map[string]interface{}{"type": "mem"},
	})
	if err != nil {
		t.Fatal(err)
	}
}
