package mem

import (
	"context"
	stderrs "errors"
	"path/filepath"
	"testing"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/testutil"
)

func TestRepo(t *testing.T) {
	testutil.SubmitGet(context.Background(), t, New())
}

func TestResubmit(t *testing.T) {
	testutil.Resubmit(context.Background(), t, New())
}

func TestStrict(t *testing.T) {
	ctx := context.Background()

	r := New(testutil.PackageSeed...)
	r.Strict = true
	paths := testutil.Submit(ctx, t, r)

	if got := r.MaxInFlight(); got != 1 {
		t.Errorf("got max in flight %d, want 1", got)
	}
	if got := len(r.Calls()); got != len(paths) {
		t.Errorf("got %d calls, want %d", got, len(paths))
	}

	// Out of order, a child comes before its parent.
	r = New(testutil.PackageSeed...)
	r.Strict = true
	root := testutil.Package(t)
	child := filepath.Join(root, "apps", "site", "components", ".content.xml")
	err := r.Submit(ctx, child)
	if !scaffold.Is(err, scaffold.SubmissionFailure) {
		t.Errorf("got error %v, want kind %v", err, scaffold.SubmissionFailure)
	}
}

func TestFailOn(t *testing.T) {
	ctx := context.Background()

	root := testutil.Package(t)
	path := filepath.Join(root, "apps", "site", ".content.xml")

	r := New()
	boom := stderrs.New("boom")
	r.FailOn(path, boom)

	err := r.Submit(ctx, path)
	if !scaffold.Is(err, scaffold.SubmissionFailure) {
		t.Errorf("got error %v, want kind %v", err, scaffold.SubmissionFailure)
	}
	if !stderrs.Is(err, boom) {
		t.Errorf("got error %v, want it to wrap %v", err, boom)
	}
	if _, err := r.Get(ctx, "/apps/site"); !scaffold.Is(err, scaffold.NotFound) {
		t.Errorf("failed submission was stored (err %v)", err)
	}
}
