package jstream

import "fmt"

// SyntaxError reports malformed input: an unterminated string, an unexpected
// byte, an invalid \u escape, and so on.
type SyntaxError struct {
	Path string
	msg  string
	err  error
}

func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jstream: syntax error at %s: %s", e.Path, e.msg)
	}
	return fmt.Sprintf("jstream: syntax error: %s", e.msg)
}

func (e *SyntaxError) Unwrap() error { return e.err }

// DataError reports well-formed input that does not match the shape the
// caller asked for: a token-kind mismatch, integer overflow on narrowing, a
// failOnUnknown trip, or NaN/Inf rejected in strict mode.
type DataError struct {
	Path string
	msg  string
	err  error
}

func (e *DataError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jstream: data error at %s: %s", e.Path, e.msg)
	}
	return fmt.Sprintf("jstream: data error: %s", e.msg)
}

func (e *DataError) Unwrap() error { return e.err }

// StateError reports an operation invalid for the reader's current state:
// use after Close, a dangling ValueSource, stack overflow, or NextSource on
// a non-value token.
type StateError struct {
	Path string
	msg  string
}

func (e *StateError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jstream: state error at %s: %s", e.Path, e.msg)
	}
	return fmt.Sprintf("jstream: state error: %s", e.msg)
}

func (r *Reader) syntaxErrorf(format string, args ...any) error {
	return &SyntaxError{Path: r.scope.String(), msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) dataErrorf(format string, args ...any) error {
	return &DataError{Path: r.scope.String(), msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) stateErrorf(format string, args ...any) error {
	return &StateError{Path: r.scope.String(), msg: fmt.Sprintf(format, args...)}
}

// wrapReadError mirrors the teacher's newReadError: an EOF encountered where
// a byte was required is always unexpected, since by the time we ask for it
// we've already committed to a token.
func (r *Reader) wrapReadError(err error) error {
	if err == nil {
		return nil
	}
	if err == errShortSource {
		return &SyntaxError{Path: r.scope.String(), msg: "unexpected end of input", err: errShortSource}
	}
	return &SyntaxError{Path: r.scope.String(), msg: err.Error(), err: err}
}
