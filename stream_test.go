package jstream

import (
	"bytes"
	"testing"
)

func TestStreamValueRoundTripIdentity(t *testing.T) {
	cases := []string{
		`{"a": 1, "b": [1, 2, 3], "c": {"d": "e"}}`,
		`[1, 2.5, "three", true, false, null]`,
		`"just a string"`,
		`42`,
		`{"nested": {"deeply": {"still": [1, [2, [3]]]}}}`,
	}
	for _, in := range cases {
		r := newTestReader(in)
		var buf bytes.Buffer
		if err := r.StreamValue(&buf); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if buf.String() != in {
			t.Fatalf("StreamValue(%q) = %q, want byte-identical", in, buf.String())
		}
	}
}

func TestStreamValuePreservesIntermediateWhitespace(t *testing.T) {
	in := `{ "a" : 1 , "b" : [ 1 , 2 ] }`
	r := newTestReader(in)
	var buf bytes.Buffer
	if err := r.StreamValue(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != in {
		t.Fatalf("StreamValue = %q, want %q", buf.String(), in)
	}
}

func TestStreamValueAfterPartialStructuredRead(t *testing.T) {
	r := newTestReader(`{"a": 1, "b": {"c": 2, "d": 3}}`)
	if err := r.BeginObject(); err != nil {
		t.Fatal(err)
	}
	name, err := r.NextName()
	if err != nil || name != "a" {
		t.Fatalf("NextName = %q, %v", name, err)
	}
	if _, err := r.NextLong(); err != nil {
		t.Fatal(err)
	}
	name, err = r.NextName()
	if err != nil || name != "b" {
		t.Fatalf("NextName = %q, %v", name, err)
	}
	var buf bytes.Buffer
	if err := r.StreamValue(&buf); err != nil {
		t.Fatal(err)
	}
	// StreamValue right after NextName emits the value only: the
	// dangling-name colon and the space after it precede the value and are
	// not streamed, just as leading whitespace is not at the document root.
	if got, want := buf.String(), `{"c": 2, "d": 3}`; got != want {
		t.Fatalf("StreamValue = %q, want %q", got, want)
	}
	if err := r.EndObject(); err != nil {
		t.Fatal(err)
	}
}

func TestStreamDoubleQuotedStringUnescape(t *testing.T) {
	r := newTestReader("\"hello\\nworld\"")
	var buf bytes.Buffer
	if err := r.StreamDoubleQuotedStringUnescape(&buf); err != nil {
		t.Fatal(err)
	}
	// The opening and closing quote bytes are part of the output too
	// (spec.md §4.F); only the escaped body gets decoded.
	if got, want := buf.String(), "\"hello\nworld\""; got != want {
		t.Fatalf("StreamDoubleQuotedStringUnescape = %q, want %q", got, want)
	}
}

func TestNextValueIsNullDryRun(t *testing.T) {
	r := newTestReader(`null`)
	isNull, err := r.NextValueIsNullDryRun()
	if err != nil {
		t.Fatal(err)
	}
	if !isNull {
		t.Fatal("expected NextValueIsNullDryRun to report true")
	}
	// Dry run must not consume the token.
	if err := r.NextNull(); err != nil {
		t.Fatal(err)
	}
}

func TestStreamValueRejectsAtEndOfDocument(t *testing.T) {
	r := newTestReader(`1`)
	if _, err := r.NextLong(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.StreamValue(&buf); err == nil {
		t.Fatal("expected error streaming past end of document")
	}
}

func TestStreamValueLenientCommentsPassedThrough(t *testing.T) {
	in := "{ /* c */ \"a\" : 1 }"
	r := newTestReader(in).Lenient(true)
	var buf bytes.Buffer
	if err := r.StreamValue(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != in {
		t.Fatalf("StreamValue = %q, want %q", buf.String(), in)
	}
}
