package repo

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	// RootDir is the directory of a content package that maps to the repository root.
	RootDir = "jcr_root"

	// Descriptor is the file holding a directory node's own properties.
	Descriptor = ".content.xml"
)

// Node is the repository location of a local content-package file.
type Node struct {
	// Local is the local file path.
	Local string

	// Path is the absolute repository path of the node the file defines.
	Path string

	// Parent is the repository path of Path's parent,
	// or "" when Path is the root.
	Parent string

	// Name is the last element of Path.
	Name string

	// Descriptor tells whether the file is a directory node's descriptor
	// rather than a node of its own.
	Descriptor bool
}

// Locate maps a local file path to its repository node.
// The repository path is the part of the local path after the last jcr_root element,
// with filesystem-safe name escapes decoded:
// "_cq_dialog" becomes "cq:dialog"
// and percent-escapes are undone.
// A descriptor names the node of the directory containing it.
func Locate(local string) (Node, error) {
	slashed := filepath.ToSlash(local)
	elems := strings.Split(slashed, "/")

	start := -1
	for i := len(elems) - 1; i >= 0; i-- {
		if elems[i] == RootDir {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return Node{}, errors.Errorf("%s is not inside a %s directory", local, RootDir)
	}

	var (
		rel        = elems[start:]
		descriptor = len(rel) > 0 && rel[len(rel)-1] == Descriptor
	)
	if descriptor {
		rel = rel[:len(rel)-1]
	}

	decoded := make([]string, 0, len(rel))
	for _, elem := range rel {
		if elem == "" {
			continue
		}
		name, err := DecodeName(elem)
		if err != nil {
			return Node{}, errors.Wrapf(err, "decoding %s", local)
		}
		decoded = append(decoded, name)
	}

	n := Node{
		Local:      local,
		Path:       "/" + strings.Join(decoded, "/"),
		Descriptor: descriptor,
	}
	if len(decoded) > 0 {
		n.Parent = path.Dir(n.Path)
		n.Name = path.Base(n.Path)
	}
	return n, nil
}

var nsEscape = regexp.MustCompile(`^_([A-Za-z0-9]+)_(.+)$`)

// DecodeName turns a filesystem name into a repository node name.
func DecodeName(name string) (string, error) {
	name, err := url.PathUnescape(name)
	if err != nil {
		return "", err
	}
	return nsEscape.ReplaceAllString(name, "$1:$2"), nil
}
