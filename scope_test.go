package jstream

import "testing"

func TestScopeStackPath(t *testing.T) {
	s := newScopeStack(0)
	if got := s.String(); got != "$" {
		t.Fatalf("empty stack path = %q, want $", got)
	}

	if err := s.push(scopeEmptyObject); err != nil {
		t.Fatal(err)
	}
	s.setTop(scopeDanglingName)
	s.setName("foo")
	s.setTop(scopeNonemptyObject)
	if got, want := s.String(), "$.foo"; got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}

	if err := s.push(scopeEmptyArray); err != nil {
		t.Fatal(err)
	}
	s.setTop(scopeNonemptyArray)
	s.initIndex()
	s.incIndex()
	if got, want := s.String(), "$.foo[1]"; got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}

	s.pop()
	s.pop()
	if got, want := s.String(), "$"; got != want {
		t.Fatalf("path after popping back to root = %q, want %q", got, want)
	}
}

func TestScopeStackMaxDepth(t *testing.T) {
	s := newScopeStack(2)
	if err := s.push(scopeEmptyArray); err != nil {
		t.Fatal(err)
	}
	if err := s.push(scopeEmptyArray); err != nil {
		t.Fatal(err)
	}
	if err := s.push(scopeEmptyArray); err == nil {
		t.Fatal("expected maximum nesting depth error")
	}
}

func TestScopeStackNullName(t *testing.T) {
	s := newScopeStack(0)
	if err := s.push(scopeEmptyObject); err != nil {
		t.Fatal(err)
	}
	s.setTop(scopeDanglingName)
	s.stampNullName()
	s.setTop(scopeNonemptyObject)
	if got, want := s.String(), "$.null"; got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}
