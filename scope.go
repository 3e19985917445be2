package jstream

import (
	"strconv"
	"strings"
)

// scopeKind enumerates where the reader sits in the nesting stack, mirroring
// spec.md §3's Scope kinds.
type scopeKind int

const (
	scopeEmptyDocument scopeKind = iota
	scopeNonemptyDocument
	scopeEmptyObject
	scopeNonemptyObject
	scopeDanglingName
	scopeEmptyArray
	scopeNonemptyArray
	scopeStreamingValue
	scopeClosed
)

// defaultMaxDepth mirrors the ceiling spec.md §3 gives as an example; the
// teacher's Decoder defaults to 200 for the same concern (convertObject /
// convertArray depth checks in json.go).
const defaultMaxDepth = 256

// scopeStack tracks nesting depth plus, in lockstep, the current object key
// or array index at each depth — spec.md §3/§4.B.
type scopeStack struct {
	kinds    []scopeKind
	names    []*string
	indices  []int
	maxDepth int
}

func newScopeStack(maxDepth int) *scopeStack {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	s := &scopeStack{maxDepth: maxDepth}
	s.push(scopeEmptyDocument)
	return s
}

func (s *scopeStack) top() scopeKind {
	return s.kinds[len(s.kinds)-1]
}

func (s *scopeStack) setTop(k scopeKind) {
	s.kinds[len(s.kinds)-1] = k
}

func (s *scopeStack) depth() int {
	return len(s.kinds)
}

func (s *scopeStack) push(k scopeKind) error {
	// The base EMPTY_DOCUMENT frame pushed by newScopeStack doesn't count
	// against maxDepth, which bounds container nesting, not document count.
	if len(s.kinds)-1 >= s.maxDepth {
		return &StateError{msg: "maximum nesting depth exceeded"}
	}
	s.kinds = append(s.kinds, k)
	s.names = append(s.names, nil)
	s.indices = append(s.indices, -1)
	return nil
}

func (s *scopeStack) pop() {
	s.kinds = s.kinds[:len(s.kinds)-1]
	s.names = s.names[:len(s.names)-1]
	s.indices = s.indices[:len(s.indices)-1]
}

func (s *scopeStack) setName(name string) {
	s.names[len(s.names)-1] = &name
}

// stampNullName records the literal string "null" as the current path name,
// per spec.md's skipName/skipValue-on-name invariant.
func (s *scopeStack) stampNullName() {
	null := "null"
	s.names[len(s.names)-1] = &null
}

func (s *scopeStack) initIndex() {
	s.indices[len(s.indices)-1] = 0
}

func (s *scopeStack) incIndex() {
	if n := len(s.indices); n > 0 && s.indices[n-1] >= 0 {
		s.indices[n-1]++
	}
}

func (s *scopeStack) currentIndex() int {
	return s.indices[len(s.indices)-1]
}

// String renders the JSONPath described in spec.md §4.B: "$" plus ".<name>"
// per object frame (or ".null" if the name is unknown/skipped) plus
// "[<index>]" per array frame.
func (s *scopeStack) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for i, k := range s.kinds {
		switch k {
		case scopeNonemptyObject, scopeDanglingName:
			name := s.names[i]
			if name == nil {
				b.WriteString(".null")
			} else {
				b.WriteByte('.')
				b.WriteString(*name)
			}
		case scopeEmptyArray, scopeNonemptyArray:
			b.WriteByte('[')
			idx := s.indices[i]
			if idx < 0 {
				idx = 0
			}
			b.WriteString(strconv.Itoa(idx))
			b.WriteByte(']')
		}
	}
	return b.String()
}
