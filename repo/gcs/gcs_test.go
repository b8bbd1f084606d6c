package gcs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/bobg/scaffold/testutil"
)

func TestObjName(t *testing.T) {
	r := &Repo{prefix: "mirror/"}
	if got := r.objName("/apps/site/cq:dialog"); got != "mirror/apps/site/cq:dialog" {
		t.Errorf("got %s, want mirror/apps/site/cq:dialog", got)
	}
	r.prefix = ""
	if got := r.objName("/apps/a.html"); got != "apps/a.html" {
		t.Errorf("got %s, want apps/a.html", got)
	}
}

const (
	credsVar = "SCAFFOLD_GCS_TESTING_CREDS"
	projVar  = "SCAFFOLD_GCS_TESTING_PROJECT"
)

func TestRepo(t *testing.T) {
	var (
		creds     = os.Getenv(credsVar)
		projectID = os.Getenv(projVar)
	)
	if creds == "" || projectID == "" {
		t.Skipf("to run TestRepo, set %s to the name of a credentials file and %s to a project ID", credsVar, projVar)
	}

	var r [30]byte
	_, err := rand.Read(r[:])
	if err != nil {
		t.Fatal(err)
	}
	bucketName := hex.EncodeToString(r[:])

	ctx := context.Background()

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(creds))
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("creating bucket %s in project %s", bucketName, projectID)

	bucket := client.Bucket(bucketName)
	err = bucket.Create(ctx, projectID, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer bucket.Delete(ctx)

	repo := New(bucket, "test/")
	testutil.SubmitGet(ctx, t, repo)

	var n int
	err = repo.List(ctx, "/apps/site", func(string) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != len(testutil.PackageFiles)-1 {
		t.Errorf("got %d objects beneath /apps/site, want %d", n, len(testutil.PackageFiles)-1)
	}
}
