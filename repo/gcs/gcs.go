// Package gcs implements a content repository on Google Cloud Storage.
// Each node is an object named by its repository path
// (without the leading slash)
// after an optional prefix.
package gcs

import (
	"context"
	stderrs "errors"
	"io"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

// Repo is a Google Cloud Storage-based content repository.
type Repo struct {
	bucket *storage.BucketHandle
	prefix string
}

// New produces a new Repo.
func New(bucket *storage.BucketHandle, prefix string) *Repo {
	return &Repo{bucket: bucket, prefix: prefix}
}

const descriptorKey = "descriptor"

func (r *Repo) objName(path string) string {
	return r.prefix + strings.TrimPrefix(path, "/")
}

// Submit implements scaffold.Submitter.
// A node submitted again replaces the earlier version.
func (r *Repo) Submit(ctx context.Context, path string) error {
	node, err := repo.Locate(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	var (
		name = r.objName(node.Path)
		w    = r.bucket.Object(name).NewWriter(ctx)
	)
	w.ContentType = mimetype.Detect(data).String()
	w.Metadata = map[string]string{descriptorKey: strconv.FormatBool(node.Descriptor)}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return errors.Wrapf(err, "writing object %s", name)
	}
	return errors.Wrapf(w.Close(), "closing object %s", name)
}

// Get returns the data last submitted for the node at path.
func (r *Repo) Get(ctx context.Context, path string) ([]byte, error) {
	name := r.objName(path)
	rd, err := r.bucket.Object(name).NewReader(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil, scaffold.E(scaffold.NotFound, path, err)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading object %s", name)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	return data, errors.Wrapf(err, "reading contents of object %s", name)
}

// List calls f with the repository path of each node beneath the given one,
// in lexicographic order.
func (r *Repo) List(ctx context.Context, under string, f func(string) error) error {
	prefix := r.objName(under)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	iter := r.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "iterating over objects with prefix %s", prefix)
		}
		if err = f("/" + strings.TrimPrefix(attrs.Name, r.prefix)); err != nil {
			return err
		}
	}
}

func init() {
	repo.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		var options []option.ClientOption
		creds, ok := conf["creds"].(string)
		if !ok {
			return nil, errors.New(`missing "creds" parameter`)
		}
		bucketName, ok := conf["bucket"].(string)
		if !ok {
			return nil, errors.New(`missing "bucket" parameter`)
		}
		prefix, _ := conf["prefix"].(string)
		options = append(options, option.WithCredentialsFile(creds))
		c, err := storage.NewClient(ctx, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		return New(c.Bucket(bucketName), prefix), nil
	})
}
