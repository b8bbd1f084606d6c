// Package dir implements a content repository as a local directory hierarchy.
// Each node is a directory or file beneath the root,
// named by its decoded repository path;
// a directory node's properties are in its descriptor file.
package dir

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

// Repo is a file-based content repository.
type Repo struct {
	root    string
	flocker flock.Locker
}

// New produces a new Repo storing nodes beneath root.
func New(root string) *Repo {
	return &Repo{root: root}
}

func (r *Repo) nodepath(path string) string {
	return filepath.Join(r.root, filepath.FromSlash(path))
}

// Submit implements scaffold.Submitter.
func (r *Repo) Submit(_ context.Context, path string) error {
	node, err := repo.Locate(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	dest := r.nodepath(node.Path)
	if node.Descriptor {
		dest = filepath.Join(dest, repo.Descriptor)
	}
	dir := filepath.Dir(dest)

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	err = r.flocker.Lock(dest)
	if err != nil {
		return errors.Wrapf(err, "locking %s", dest)
	}
	defer r.flocker.Unlock(dest)

	err = os.WriteFile(dest, data, 0644)
	return errors.Wrapf(err, "writing %s", dest)
}

// Get returns the data last submitted for the node at path.
// A directory node that has no descriptor yields no data.
func (r *Repo) Get(_ context.Context, path string) ([]byte, error) {
	p := r.nodepath(path)
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil, scaffold.E(scaffold.NotFound, path, err)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting info for %s", p)
	}
	if info.IsDir() {
		p = filepath.Join(p, repo.Descriptor)
	}
	data, err := os.ReadFile(p)
	if info.IsDir() && os.IsNotExist(err) {
		return nil, nil
	}
	return data, errors.Wrapf(err, "reading %s", p)
}

func init() {
	repo.Register("dir", func(_ context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
