// Package sqlite3 implements a content repository in a Sqlite database.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"
	"os"
	"time"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

// Repo is a Sqlite-based content repository.
type Repo struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `nodes` table if it does not exist.
// (If it does exist, it must have the columns, constraints, and indexing described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS nodes (
  path TEXT PRIMARY KEY NOT NULL,
  parent TEXT NOT NULL,
  descriptor INTEGER NOT NULL,
  data BLOB NOT NULL,
  updated TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS parent_idx ON nodes (parent);
`

// New produces a new Repo using `db` for storage.
// It expects to create table `nodes`,
// or for that table already to exist with the correct schema.
// (See constant Schema.)
func New(ctx context.Context, db *sql.DB) (*Repo, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Repo{db: db}, errors.Wrap(err, "creating schema")
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

	const q = `INSERT INTO nodes (path, parent, descriptor, data, updated) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (path) DO UPDATE SET data = excluded.data, descriptor = excluded.descriptor, updated = excluded.updated`

	_, err = r.db.ExecContext(ctx, q, node.Path, node.Parent, node.Descriptor, data, time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "storing node %s", node.Path)
}

// Get returns the data last submitted for the node at path.
func (r *Repo) Get(ctx context.Context, path string) ([]byte, error) {
	const q = `SELECT data FROM nodes WHERE path = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, q, path).Scan(&data)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, scaffold.E(scaffold.NotFound, path, err)
	}
	return data, errors.Wrapf(err, "getting node %s", path)
}

// Children calls f with the path of each child of the node at parent,
// in lexicographic order.
func (r *Repo) Children(ctx context.Context, parent string, f func(string) error) error {
	const q = `SELECT path FROM nodes WHERE parent = $1 ORDER BY path`
	return sqlutil.ForQueryRows(ctx, r.db, q, parent, f)
}

func init() {
	repo.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
