// Package scaffold describes the pieces shared by the scaffolding and sync packages:
// the Submitter capability for pushing files into a content repository,
// and the closed set of error kinds the pipeline reports.
package scaffold

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Submitter imports a single local file into a content repository.
// A call must not return until the repository has accepted or rejected the file.
// Implementations live under repo/.
type Submitter interface {
	Submit(ctx context.Context, path string) error
}

// Kind classifies the errors produced by this module.
type Kind int

const (
	// NotFound means a template root, crawl root, or repository node is missing,
	// or a root is not a readable directory.
	NotFound Kind = 1 + iota

	// CopyFailure means a single file could not be materialized.
	CopyFailure

	// SubmissionFailure means the content repository rejected an import.
	SubmissionFailure

	// MissingServerConfig means sync was requested without usable repository settings.
	MissingServerConfig
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case CopyFailure:
		return "copy failure"
	case SubmissionFailure:
		return "submission failure"
	case MissingServerConfig:
		return "missing server config"
	}
	return fmt.Sprintf("kind %d", int(k))
}

// Error is an error of a particular Kind, optionally about a particular path.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// E produces an *Error.
func E(kind Kind, path string, err error) error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain,
// or 0 if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is tells whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
