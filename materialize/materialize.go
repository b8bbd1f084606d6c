// Package materialize copies a component template into a project,
// renaming the component's markup file and filling in placeholder tokens.
package materialize

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
)

const (
	// Excluded is never copied out of a template, at any depth.
	Excluded = ".htpasswd"

	// Renamed is the template file that takes the component's name.
	// Only the top-level file of this name is renamed.
	Renamed = "component.html"

	// MarkupExt marks the files whose placeholders are substituted.
	MarkupExt = ".xml"
)

// Placeholder tokens in template markup.
const (
	TitleToken     = "%sTitle"
	ProjectToken   = "%sProject"
	GroupToken     = "%sComponentGroup"
	SuperTypeToken = "%sResourceSuperType"
	CategoryToken  = "%sCategory"
)

// Context holds the values substituted into a template.
type Context struct {
	Title     string
	Project   string
	Group     string
	SuperType string
	Category  string
}

var spaces = regexp.MustCompile(`\s+`)

// Normalize replaces each run of whitespace in s with a hyphen and lowercases the result.
func Normalize(s string) string {
	return strings.ToLower(spaces.ReplaceAllString(s, "-"))
}

// Normalize returns a copy of c with every field normalized.
func (c Context) Normalize() Context {
	return Context{
		Title:     Normalize(c.Title),
		Project:   Normalize(c.Project),
		Group:     Normalize(c.Group),
		SuperType: Normalize(c.SuperType),
		Category:  Normalize(c.Category),
	}
}

func (c Context) replacer() *strings.Replacer {
	n := c.Normalize()
	return strings.NewReplacer(
		TitleToken, n.Title,
		ProjectToken, n.Project,
		GroupToken, n.Group,
		SuperTypeToken, n.SuperType,
		CategoryToken, n.Category,
	)
}

// ProgressKind tells what a Progress event reports.
type ProgressKind int

const (
	CopyStart ProgressKind = iota
	CopyComplete
	CopyError
)

func (k ProgressKind) String() string {
	switch k {
	case CopyStart:
		return "copy-start"
	case CopyComplete:
		return "copy-complete"
	case CopyError:
		return "per-file-error"
	}
	return "unknown"
}

// Progress reports on one file of a Run.
// Src is the slash-separated path within the template;
// Dest is the destination path.
// Err is set only for CopyError, and has kind scaffold.CopyFailure.
type Progress struct {
	Kind ProgressKind
	Src  string
	Dest string
	Err  error
}

// Run copies every entry of src into destRoot.
// Existing files are overwritten and intermediate directories are created.
// Dot-files are copied, except for the file named Excluded.
// The top-level Renamed file becomes <title>.html.
// In files ending in MarkupExt the placeholder tokens are replaced with tc's normalized values;
// all other files are copied unchanged.
//
// If the template root cannot be read,
// Run returns an error of kind scaffold.NotFound and does nothing.
// Otherwise it copies in a separate goroutine,
// reporting progress on the returned channel,
// which the caller must drain.
// The channel is closed when copying ends.
// A failure copying one file is reported as a CopyError event
// and the remaining files are still copied.
// The returned function waits for the copy to end
// and reports the number of files copied,
// plus an error if ctx was canceled first.
func Run(ctx context.Context, src fs.FS, destRoot string, tc Context) (<-chan Progress, func() (int, error), error) {
	if _, err := fs.ReadDir(src, "."); err != nil {
		return nil, nil, scaffold.E(scaffold.NotFound, "template root", err)
	}

	var (
		ch     = make(chan Progress)
		done   = make(chan struct{})
		copied int
		runErr error
		r      = tc.replacer()
		name   = Normalize(tc.Title)
	)

	send := func(p Progress) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- p:
			return nil
		}
	}

	go func() {
		defer close(done)
		defer close(ch)

		runErr = fs.WalkDir(src, ".", func(rel string, entry fs.DirEntry, err error) error {
			if rel == "." {
				if err != nil {
					return err
				}
				return os.MkdirAll(destRoot, 0755)
			}

			dest := filepath.Join(destRoot, filepath.FromSlash(destName(rel, name)))

			if err != nil {
				// An unreadable subdirectory; report it and keep going.
				return send(Progress{Kind: CopyError, Src: rel, Dest: dest, Err: scaffold.E(scaffold.CopyFailure, rel, err)})
			}
			if entry.IsDir() {
				if err := os.MkdirAll(dest, 0755); err != nil {
					if err := send(Progress{Kind: CopyError, Src: rel, Dest: dest, Err: scaffold.E(scaffold.CopyFailure, dest, err)}); err != nil {
						return err
					}
					return fs.SkipDir
				}
				return nil
			}
			if path.Base(rel) == Excluded {
				return nil
			}

			if err := send(Progress{Kind: CopyStart, Src: rel, Dest: dest}); err != nil {
				return err
			}
			if err := copyFile(src, rel, dest, r); err != nil {
				return send(Progress{Kind: CopyError, Src: rel, Dest: dest, Err: scaffold.E(scaffold.CopyFailure, dest, err)})
			}
			copied++
			return send(Progress{Kind: CopyComplete, Src: rel, Dest: dest})
		})
	}()

	wait := func() (int, error) {
		<-done
		return copied, errors.Wrap(runErr, "copying template")
	}

	return ch, wait, nil
}

// destName maps a template-relative path to its destination-relative path.
func destName(rel, name string) string {
	if rel == Renamed {
		return strings.Replace(Renamed, "component", name, 1)
	}
	return rel
}

func copyFile(src fs.FS, rel, dest string, r *strings.Replacer) error {
	in, err := src.Open(rel)
	if err != nil {
		return errors.Wrapf(err, "opening template file %s", rel)
	}
	defer in.Close()

	var reader io.Reader = in
	if path.Ext(rel) == MarkupExt {
		data, err := io.ReadAll(in)
		if err != nil {
			return errors.Wrapf(err, "reading template file %s", rel)
		}
		reader = bytes.NewReader([]byte(r.Replace(string(data))))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, "making dir for %s", dest)
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening %s for writing", dest)
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", dest)
	}
	return errors.Wrapf(out.Close(), "closing %s", dest)
}
