// Package tree lists the files of a content tree
// and puts them in the order a content repository can import them.
//
// In a content package every directory node carries its own metadata
// in a dot-prefixed descriptor file (usually .content.xml).
// The repository refuses to create a node whose parent does not exist yet,
// so descriptors must be imported shallowest-first,
// and a directory's descriptor must come before anything else in it.
// Order produces exactly that sequence.
package tree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bobg/scaffold"
)

const sep = string(filepath.Separator)

// Kind distinguishes files from directories during a crawl.
type Kind int

const (
	File Kind = iota
	Dir
)

// Node is one entry seen during a crawl.
type Node struct {
	Path string
	Kind Kind
}

// Crawl returns the path of every file beneath root,
// descending into all subdirectories, dot-prefixed ones included.
// Directories themselves are not in the result.
// The order is whatever the filesystem enumeration produces;
// callers wanting import order must pass the result through Order.
//
// Crawl(d) and Crawl(d+"/") produce identical results.
// If root does not exist, is not a directory, or cannot be read,
// the error has kind scaffold.NotFound.
func Crawl(root string) ([]string, error) {
	info, err := os.Stat(filepath.Clean(root))
	if err != nil {
		return nil, scaffold.E(scaffold.NotFound, root, err)
	}
	if !info.IsDir() {
		return nil, scaffold.E(scaffold.NotFound, root, errors.New("not a directory"))
	}
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, scaffold.E(scaffold.NotFound, root, err)
	}

	var result []string
	err = walkEntries(root, entries, func(n Node) {
		if n.Kind == File {
			result = append(result, n.Path)
		}
	})
	return result, err
}

// walk calls f for every file and directory beneath dir
// (which must end with a separator).
// Directories are reported before their contents.
func walk(dir string, f func(Node)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", dir)
	}
	return walkEntries(dir, entries, f)
}

func walkEntries(dir string, entries []os.DirEntry, f func(Node)) error {
	for _, entry := range entries {
		path := dir + entry.Name()

		// Stat rather than use the entry's type so that symlinks are followed.
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(err, "getting info for %s", path)
		}
		if info.IsDir() {
			f(Node{Path: path, Kind: Dir})
			if err = walk(path+sep, f); err != nil {
				return err
			}
			continue
		}
		f(Node{Path: path, Kind: File})
	}
	return nil
}

// SortByName stably sorts paths by their final segment.
// Two dot-prefixed names compare equal,
// a dot-prefixed name sorts before any other,
// and the remaining names are compared with locale-aware collation.
func SortByName(paths []string) {
	c := collate.New(language.Und)
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := filepath.Base(paths[i]), filepath.Base(paths[j])
		adot, bdot := strings.HasPrefix(a, "."), strings.HasPrefix(b, ".")
		switch {
		case adot && bdot:
			return false
		case adot:
			return true
		case bdot:
			return false
		}
		return c.CompareString(a, b) < 0
	})
}

// SortByDepth stably sorts paths by their number of path separators, fewest first.
// It is meant to run on the output of SortByName;
// the combination puts every directory's descriptor
// ahead of the descriptors of its descendants.
func SortByDepth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return Depth(paths[i]) < Depth(paths[j])
	})
}

// Depth is the number of path separators in path.
func Depth(path string) int {
	return strings.Count(path, sep)
}

// Order sorts paths in place into import order
// (SortByName, then SortByDepth)
// and returns it.
func Order(paths []string) []string {
	SortByName(paths)
	SortByDepth(paths)
	return paths
}
