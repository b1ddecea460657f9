// Package operr classifies the failures the bot can surface to an
// operator. Every public operation in pkg/flux and pkg/apps returns either
// a fully-populated result or a single *operr.Error; rendering the
// classification into chat text is the bot's job, not the core's.
package operr

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Kind identifies a failure class.
type Kind string

const (
	// ClusterQuery is a failed cluster read. Surfaced verbatim, no retry.
	ClusterQuery Kind = "cluster_query"
	// ClusterWrite is a failed cluster write outside the two-phase
	// reconcile protocol.
	ClusterWrite Kind = "cluster_write"
	// SuspendFailed is a failure of the first reconcile phase. The release
	// was left untouched.
	SuspendFailed Kind = "suspend_failed"
	// UnsuspendFailed is a failure of the second reconcile phase. The
	// release is left suspended and needs manual cleanup.
	UnsuspendFailed Kind = "unsuspend_failed"
	// Conflict is a concurrent-modification rejection from the API server.
	// Not retried automatically.
	Conflict Kind = "conflict"
	// AlreadyReconciling is a precondition rejection, not a fault: the
	// release is already converging and a second toggle would race the
	// controller.
	AlreadyReconciling Kind = "already_reconciling"
	// TokenDecode is malformed callback data.
	TokenDecode Kind = "token_decode"
)

// Error is a classified failure with an optional wrapped cause.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "list helmreleases"
	Detail string // human-readable detail when there is no cause
	Err    error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	default:
		return e.Detail
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error without a cause.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap classifies err under kind, recording the failed operation.
// Conflicts reported by the API server take precedence over the caller's
// kind so a racing writer is never misreported as a generic write failure.
func Wrap(kind Kind, op string, err error) *Error {
	if apierrors.IsConflict(err) {
		kind = Conflict
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the classification of err, or "" for nil and unclassified
// errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
