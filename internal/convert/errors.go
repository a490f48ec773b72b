package convert

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind tags a failed Outcome. The string form appears verbatim in
// reports and metrics labels.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureDecode
	FailureWrite
	FailureSubprocessExit
	FailureBinaryNotFound
	FailureCanceled
)

var failureNames = [...]string{
	FailureUnknown:        "Error",
	FailureDecode:         "DecodeError",
	FailureWrite:          "WriteError",
	FailureSubprocessExit: "SubprocessExitFailure",
	FailureBinaryNotFound: "BinaryNotFound",
	FailureCanceled:       "Canceled",
}

func (k FailureKind) String() string {
	if int(k) < len(failureNames) {
		return failureNames[k]
	}
	return failureNames[FailureUnknown]
}

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrDecode         = errors.New("cannot decode source")
	ErrWrite          = errors.New("cannot write target")
	ErrSubprocessExit = errors.New("transcoder exited with failure")
	ErrBinaryNotFound = errors.New("transcoder binary not found")
	ErrCanceled       = errors.New("conversion canceled")
)

var sentinels = map[FailureKind]error{
	FailureDecode:         ErrDecode,
	FailureWrite:          ErrWrite,
	FailureSubprocessExit: ErrSubprocessExit,
	FailureBinaryNotFound: ErrBinaryNotFound,
	FailureCanceled:       ErrCanceled,
}

// Error is the typed failure carried by Outcome.Err.
type Error struct {
	Kind     FailureKind
	Path     string // File the failure relates to (source or target).
	Err      error  // Underlying cause, message kept verbatim.
	ExitCode int    // Transcoder exit code (SubprocessExitFailure only).
	Hint     string // Short classification of the transcoder's stderr, if any.
	Stderr   string // Captured transcoder stderr, verbatim.
}

func (e *Error) Error() string {
	var b strings.Builder
	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		if s, ok := sentinels[e.Kind]; ok {
			b.WriteString(s.Error())
		} else {
			b.WriteString("conversion failed")
		}
	}
	if e.Kind == FailureSubprocessExit {
		fmt.Fprintf(&b, " (exit code %d", e.ExitCode)
		if e.Hint != "" {
			b.WriteString(", " + e.Hint)
		}
		b.WriteString(")")
		if s := strings.TrimSpace(e.Stderr); s != "" {
			b.WriteString(": ")
			b.WriteString(s)
		}
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && target == s
}

// KindOf extracts the FailureKind from err. Untyped errors that wrap a
// sentinel are classified by that sentinel.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	for k, s := range sentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return FailureUnknown
}

// Errorf builds an *Error of kind k for path with a formatted cause.
func Errorf(k FailureKind, path, format string, args ...any) *Error {
	return &Error{Kind: k, Path: path, Err: fmt.Errorf(format, args...)}
}
