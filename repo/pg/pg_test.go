package pg

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/bobg/scaffold/testutil"
)

func TestRepo(t *testing.T) {
	withRepo(t, func(ctx context.Context, r *Repo) {
		testutil.SubmitGet(ctx, t, r)
	})
}

func TestResubmit(t *testing.T) {
	withRepo(t, func(ctx context.Context, r *Repo) {
		testutil.Resubmit(ctx, t, r)
	})
}

func TestUpdated(t *testing.T) {
	withRepo(t, func(ctx context.Context, r *Repo) {
		since := time.Now().Add(-time.Second)
		paths := testutil.Submit(ctx, t, r)

		var n int
		err := r.Updated(ctx, since, func(string, time.Time) error {
			n++
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if n < len(paths) {
			t.Errorf("got %d updated nodes, want at least %d", n, len(paths))
		}
	})
}

const connVar = "SCAFFOLD_PG_TESTING_CONN"

func withRepo(t *testing.T, f func(context.Context, *Repo)) {
	connstr := os.Getenv(connVar)
	if connstr == "" {
		t.Skipf("to run %s, set %s to a valid Postgresql connection string", t.Name(), connVar)
	}

	db, err := sql.Open("postgres", connstr)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	r, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	f(ctx, r)
}
