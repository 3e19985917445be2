package jstream

import (
	"strings"
	"testing"
	"testing/iotest"
)

func TestBufferedSourceReadUTF8AcrossRefill(t *testing.T) {
	// The buffer size is floored at 512, so a one-byte-at-a-time reader is
	// what forces each readUTF8 to refill repeatedly.
	src := newBufferedSource(iotest.OneByteReader(strings.NewReader("hello, world")), 4)
	s, err := src.readUTF8(5)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" {
		t.Fatalf("readUTF8(5) = %q, want hello", s)
	}
	rest, err := src.readUTF8(7)
	if err != nil {
		t.Fatal(err)
	}
	if rest != ", world" {
		t.Fatalf("readUTF8(7) = %q, want \", world\"", rest)
	}
}

func TestBufferedSourceIndexOfElement(t *testing.T) {
	src := newBufferedSource(strings.NewReader("abc,def"), 2)
	idx, err := src.indexOfElement(newByteSet(','))
	if err != nil {
		t.Fatal(err)
	}
	if idx != 3 {
		t.Fatalf("indexOfElement = %d, want 3", idx)
	}
}

func TestBufferedSourceIndexOfElementNotFound(t *testing.T) {
	src := newBufferedSource(strings.NewReader("abcdef"), 2)
	idx, err := src.indexOfElement(newByteSet(','))
	if err != nil {
		t.Fatal(err)
	}
	if idx != -1 {
		t.Fatalf("indexOfElement = %d, want -1", idx)
	}
}

func TestBufferedSourceIndexOf(t *testing.T) {
	src := newBufferedSource(strings.NewReader("abc*/def"), 2)
	idx, err := src.indexOf([]byte("*/"))
	if err != nil {
		t.Fatal(err)
	}
	if idx != 3 {
		t.Fatalf("indexOf = %d, want 3", idx)
	}
}

func TestBufferedSourceSelectOptionLongestMatchWins(t *testing.T) {
	src := newBufferedSource(strings.NewReader("falsetto"), 4)
	opts := []option{
		{bytes: []byte("false"), index: 0},
		{bytes: []byte("falsetto"), index: 1},
	}
	idx, err := src.selectOption(opts)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Fatalf("selectOption = %d, want 1 (longest match)", idx)
	}
	if src.size() != 0 {
		t.Fatalf("expected source fully consumed, %d bytes remain", src.size())
	}
}

// TestBufferedSourcePeekSourceForksBufferedWindow verifies that a
// peekSource fork replays the already-buffered-but-unconsumed bytes
// independently of the original — the original advancing past them must
// not affect the fork, since within the buffered window the two no longer
// share any state. Bytes beyond that window come from the same underlying
// io.Reader and are therefore NOT safe to read from both sides, per
// source.go's peekSource doc comment; this test sticks to the buffered
// window deliberately.
func TestBufferedSourcePeekSourceForksBufferedWindow(t *testing.T) {
	src := newBufferedSource(strings.NewReader("abcdef"), 2)
	if _, err := src.request(6); err != nil {
		t.Fatal(err)
	}
	fork := src.peekSource()

	a, err := src.readUTF8(6)
	if err != nil {
		t.Fatal(err)
	}
	if a != "abcdef" {
		t.Fatalf("original read %q, want abcdef", a)
	}

	b, err := fork.readUTF8(6)
	if err != nil {
		t.Fatal(err)
	}
	if b != "abcdef" {
		t.Fatalf("fork read %q after original advanced past it, want abcdef", b)
	}
}
