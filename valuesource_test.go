package jstream

import (
	"errors"
	"io"
	"testing"
)

func TestNextSourceStreamsRawValueBytes(t *testing.T) {
	r := newTestReader(`{"a": [1, 2, 3], "b": 4}`)
	if err := r.BeginObject(); err != nil {
		t.Fatal(err)
	}
	name, err := r.NextName()
	if err != nil || name != "a" {
		t.Fatalf("NextName = %q, %v", name, err)
	}
	vs, err := r.NextSource()
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(vs)
	if err != nil {
		t.Fatal(err)
	}
	if want := "[1, 2, 3]"; string(got) != want {
		t.Fatalf("NextSource bytes = %q, want %q", got, want)
	}
	name, err = r.NextName()
	if err != nil || name != "b" {
		t.Fatalf("NextName after draining NextSource = %q, %v", name, err)
	}
	n, err := r.NextLong()
	if err != nil || n != 4 {
		t.Fatalf("NextLong = %d, %v", n, err)
	}
	if err := r.EndObject(); err != nil {
		t.Fatal(err)
	}
}

func TestNextSourceAutoDrainsWhenAbandoned(t *testing.T) {
	r := newTestReader(`{"a": [1, 2, 3], "b": 4}`)
	if err := r.BeginObject(); err != nil {
		t.Fatal(err)
	}
	name, err := r.NextName()
	if err != nil || name != "a" {
		t.Fatalf("NextName = %q, %v", name, err)
	}
	if _, err := r.NextSource(); err != nil {
		t.Fatal(err)
	}
	// Never read from the returned ValueSource: the next structural call
	// must auto-drain it rather than getting confused mid-array.
	name, err = r.NextName()
	if err != nil || name != "b" {
		t.Fatalf("NextName after abandoned NextSource = %q, %v", name, err)
	}
	n, err := r.NextLong()
	if err != nil || n != 4 {
		t.Fatalf("NextLong = %d, %v", n, err)
	}
}

func TestValueSourceCloseAbandonsRemainder(t *testing.T) {
	r := newTestReader(`[1, 2, 3]`)
	vs, err := r.NextSource()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 1)
	if _, err := vs.Read(buf); err != nil {
		t.Fatal(err)
	}
	if err := vs.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCloseRejectsWithValueSourceNotFullyRead(t *testing.T) {
	r := newTestReader(`[1, 2, 3]`)
	vs, err := r.NextSource()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 1)
	if _, err := vs.Read(buf); err != nil {
		t.Fatal(err)
	}
	var stateErr *StateError
	if err := r.Close(); !errors.As(err, &stateErr) {
		t.Fatalf("Close() = %v, want *StateError", err)
	}
	// Draining the rest clears the way for Close to succeed.
	if _, err := io.ReadAll(vs); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() after fully draining = %v, want nil", err)
	}
}

func TestCloseSucceedsAfterNextSourceFullyRead(t *testing.T) {
	r := newTestReader(`[1, 2, 3]`)
	vs, err := r.NextSource()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadAll(vs); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() = %v, want nil", err)
	}
}
