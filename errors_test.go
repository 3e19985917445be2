package jstream

import (
	"errors"
	"testing"
)

func TestSyntaxErrorMessageIncludesPath(t *testing.T) {
	r := newTestReader(`{"a": }`)
	if err := r.BeginObject(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.NextName(); err != nil {
		t.Fatal(err)
	}
	_, err := r.NextLong()
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if synErr.Path != "$.a" {
		t.Fatalf("Path = %q, want $.a", synErr.Path)
	}
}

func TestDataErrorUnwrapsToNil(t *testing.T) {
	r := newTestReader(`"not a number"`)
	_, err := r.NextLong()
	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("error = %v, want *DataError", err)
	}
	if dataErr.Unwrap() != nil {
		t.Fatalf("Unwrap() = %v, want nil for a shape mismatch", dataErr.Unwrap())
	}
}

func TestStateErrorAfterClose(t *testing.T) {
	r := newTestReader(`1`)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	_, err := r.NextLong()
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("error = %v, want *StateError", err)
	}
}

func TestWrapReadErrorPreservesErrShortSourceInChain(t *testing.T) {
	r := newTestReader(``)
	err := r.wrapReadError(errShortSource)
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if !errors.Is(err, errShortSource) {
		t.Fatalf("expected errors.Is to find errShortSource in the chain")
	}
}

func TestNextStringUnterminatedIsSyntaxError(t *testing.T) {
	r := newTestReader(`"unterminated`)
	_, err := r.NextString()
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
}
