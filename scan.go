package jstream

import (
	"io"
)

var (
	wsSet           = newByteSet(' ', '\t', '\r', '\n')
	newlineSet      = newByteSet('\n', '\r')
	structuralSet   = newByteSet('{', '}', '[', ']', ':', ',')
	unquotedTermSet = newByteSet('{', '}', '[', ']', ':', ',', ' ', '\n', '\t', '\r', '\f', '/', '\\', ';', '#', '=')
)

// writeByte/writeBytes append to sink when it is not nil, mirroring the
// "defaults to a no-op blackhole" dual-sink discipline of spec.md §9. We use
// a nil io.Writer as the blackhole rather than io.Discard so the common
// structured-decode path (which never streams) pays no interface-call cost.
func writeByte(w io.Writer, b byte) {
	if w == nil {
		return
	}
	var buf [1]byte
	buf[0] = b
	_, _ = w.Write(buf[:])
}

func writeBytes(w io.Writer, b []byte) {
	if w == nil || len(b) == 0 {
		return
	}
	_, _ = w.Write(b)
}

func writeString(w io.Writer, s string) {
	if w == nil || s == "" {
		return
	}
	_, _ = io.WriteString(w, s)
}

// appendPrefixByte/appendPrefixString record a byte doPeek consumed while
// classifying the current token into the peek's replayable prefix — see
// peekState.prefix.
func (r *Reader) appendPrefixByte(b byte) {
	r.peek.prefix = append(r.peek.prefix, b)
}

func (r *Reader) appendPrefixString(s string) {
	r.peek.prefix = append(r.peek.prefix, s...)
}

// nextNonWhitespace skips whitespace and, in lenient mode, comments,
// returning the first byte that is neither, without consuming it from the
// source. When capture is true, every skipped byte — whitespace and comment
// bodies alike — is appended to the peek prefix (spec.md §4.D); when false,
// skipped bytes are discarded, which is how a top-level value's leading
// whitespace is kept out of a subsequent StreamValue call.
//
// If throwOnEOF is true, running out of input is a SyntaxError; otherwise
// the caller receives (0, io.EOF) and decides what that means (e.g. a clean
// end of document).
func (r *Reader) nextNonWhitespace(throwOnEOF bool, capture bool) (byte, error) {
	for {
		ok, err := r.src.request(1)
		if err != nil {
			return 0, r.wrapReadError(err)
		}
		if !ok {
			if throwOnEOF {
				return 0, r.syntaxErrorf("unexpected end of input")
			}
			return 0, io.EOF
		}
		b, _ := r.src.getByte(0)
		switch b {
		case ' ', '\t', '\r', '\n':
			_ = r.src.skip(1)
			if capture {
				r.appendPrefixByte(b)
			}
			continue
		case '/':
			if !r.lenient {
				return b, nil
			}
			ok2, err := r.src.request(2)
			if err != nil {
				return 0, r.wrapReadError(err)
			}
			if !ok2 {
				return b, nil
			}
			b2, _ := r.src.getByte(1)
			switch b2 {
			case '*':
				_ = r.src.skip(2)
				if capture {
					r.appendPrefixByte('/')
					r.appendPrefixByte('*')
				}
				if err := r.skipBlockComment(capture); err != nil {
					return 0, err
				}
				continue
			case '/':
				_ = r.src.skip(2)
				if capture {
					r.appendPrefixByte('/')
					r.appendPrefixByte('/')
				}
				r.skipLineComment(capture)
				continue
			default:
				return b, nil
			}
		case '#':
			if !r.lenient {
				return b, nil
			}
			_ = r.src.skip(1)
			if capture {
				r.appendPrefixByte('#')
			}
			r.skipLineComment(capture)
			continue
		default:
			return b, nil
		}
	}
}

// skipBlockComment consumes up through the first "*/", having already
// consumed the opening "/*".
func (r *Reader) skipBlockComment(capture bool) error {
	for {
		idx, err := r.src.indexOf([]byte("*/"))
		if err != nil {
			return r.wrapReadError(err)
		}
		if idx < 0 {
			return r.syntaxErrorf("unterminated comment")
		}
		s, err := r.src.readUTF8(idx + 2)
		if err != nil {
			return r.wrapReadError(err)
		}
		if capture {
			r.appendPrefixString(s)
		}
		return nil
	}
}

// skipLineComment consumes to (but not including) the next newline, or to
// EOF if none remains.
func (r *Reader) skipLineComment(capture bool) {
	idx, err := r.src.indexOfElement(newlineSet)
	if err != nil || idx < 0 {
		n := r.src.size()
		for {
			ok, _ := r.src.request(n + 1)
			if !ok {
				break
			}
			n++
		}
		s, _ := r.src.readUTF8(r.src.size())
		if capture {
			r.appendPrefixString(s)
		}
		return
	}
	s, _ := r.src.readUTF8(idx)
	if capture {
		r.appendPrefixString(s)
	}
}

// isLiteral reports whether c may appear inside an unquoted name/string
// literal. Whitespace and structural characters never qualify; in strict
// mode neither do '/', '\\', ';', '#', '=' (spec.md §4.D).
func (r *Reader) isLiteral(c byte) bool {
	if wsSet[c] || structuralSet[c] {
		return false
	}
	if !r.lenient {
		switch c {
		case '/', '\\', ';', '#', '=':
			return false
		}
	}
	return true
}

// doPeek is the structural dispatcher of spec.md §4.D: it inspects the
// current scope to decide what separators/terminators are legal, then
// classifies the next token. It never writes to a caller's sink directly —
// every byte it consumes (separators and structural opening bytes always,
// intervening whitespace/comments only when writeIntermediates is true) is
// appended to the peek prefix, to be flushed by whichever caller eventually
// acts on the classified token (see peekState.prefix, StreamValue,
// peekForStream).
func (r *Reader) doPeek(writeIntermediates bool) (peeked, error) {
	if r.peek.token != peekedNone {
		return r.peek.token, nil
	}

	if err := r.drainStreamingValueIfOpen(); err != nil {
		return peekedNone, err
	}

	wasEmptyArray := r.scope.top() == scopeEmptyArray
	switch r.scope.top() {
	case scopeEmptyArray:
		r.scope.setTop(scopeNonemptyArray)
		r.scope.initIndex()
	case scopeNonemptyArray:
		c, err := r.nextNonWhitespace(true, writeIntermediates)
		if err != nil {
			return peekedNone, err
		}
		switch c {
		case ']':
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
			r.peek.token = peekedEndArray
			return r.peek.token, nil
		case ';':
			if !r.lenient {
				return peekedNone, r.syntaxErrorf("unexpected ';', expected ',' or ']'")
			}
			fallthrough
		case ',':
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
		default:
			return peekedNone, r.syntaxErrorf("unterminated array, expected ',' or ']'")
		}
	case scopeEmptyObject, scopeNonemptyObject:
		wasNonempty := r.scope.top() == scopeNonemptyObject
		r.scope.setTop(scopeDanglingName)
		if wasNonempty {
			c, err := r.nextNonWhitespace(true, writeIntermediates)
			if err != nil {
				return peekedNone, err
			}
			switch c {
			case '}':
				_ = r.src.skip(1)
				r.appendPrefixByte(c)
				r.peek.token = peekedEndObject
				return r.peek.token, nil
			case ';':
				if !r.lenient {
					return peekedNone, r.syntaxErrorf("unexpected ';', expected ',' or '}'")
				}
				fallthrough
			case ',':
				_ = r.src.skip(1)
				r.appendPrefixByte(c)
			default:
				return peekedNone, r.syntaxErrorf("unterminated object, expected ',' or '}'")
			}
		}
		c, err := r.nextNonWhitespace(true, writeIntermediates)
		if err != nil {
			return peekedNone, err
		}
		switch {
		case c == '"':
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
			r.peek.token = peekedDoubleQuotedName
			return r.peek.token, nil
		case c == '\'':
			if !r.lenient {
				return peekedNone, r.syntaxErrorf("unexpected \"'\", strings must be double-quoted")
			}
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
			r.peek.token = peekedSingleQuotedName
			return r.peek.token, nil
		case c == '}' && !wasNonempty:
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
			r.peek.token = peekedEndObject
			return r.peek.token, nil
		default:
			if !r.lenient {
				return peekedNone, r.syntaxErrorf("expected name to be double-quoted")
			}
			if !r.isLiteral(c) {
				return peekedNone, r.syntaxErrorf("expected a name")
			}
			r.peek.token = peekedUnquotedName
			return r.peek.token, nil
		}
	case scopeDanglingName:
		r.scope.setTop(scopeNonemptyObject)
		c, err := r.nextNonWhitespace(true, writeIntermediates)
		if err != nil {
			return peekedNone, err
		}
		switch c {
		case ':':
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
		case '=':
			if !r.lenient {
				return peekedNone, r.syntaxErrorf("expected ':'")
			}
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
			ok, err := r.src.request(1)
			if err != nil {
				return peekedNone, r.wrapReadError(err)
			}
			if ok {
				if b, _ := r.src.getByte(0); b == '>' {
					_ = r.src.skip(1)
					r.appendPrefixByte(b)
				}
			}
		default:
			return peekedNone, r.syntaxErrorf("expected ':'")
		}
	case scopeEmptyDocument:
		r.scope.setTop(scopeNonemptyDocument)
	case scopeNonemptyDocument:
		c, err := r.nextNonWhitespace(false, writeIntermediates)
		if err == io.EOF {
			r.peek.token = peekedEOF
			return r.peek.token, nil
		}
		if err != nil {
			return peekedNone, err
		}
		if !r.lenient {
			return peekedNone, r.syntaxErrorf("expected end of document, found trailing data")
		}
		_ = c // leave unconsumed; handled by the common dispatch below
	case scopeClosed:
		return peekedNone, r.stateErrorf("reader is closed")
	}

	c, err := r.nextNonWhitespace(true, writeIntermediates)
	if err != nil {
		return peekedNone, err
	}

	switch c {
	case ']':
		if wasEmptyArray {
			r.peek.token = peekedEndArray
			_ = r.src.skip(1)
			r.appendPrefixByte(c)
			return r.peek.token, nil
		}
		// A comma directly before ']' leaves a null element in lenient
		// mode; the ']' itself stays unconsumed for the next peek.
		if r.lenient && r.scope.top() == scopeNonemptyArray {
			r.peek.lexemeLength = 0
			r.peek.token = peekedNull
			return r.peek.token, nil
		}
		return peekedNone, r.syntaxErrorf("unexpected ']'")
	case '{':
		_ = r.src.skip(1)
		r.appendPrefixByte(c)
		r.peek.token = peekedBeginObject
		return r.peek.token, nil
	case '[':
		_ = r.src.skip(1)
		r.appendPrefixByte(c)
		r.peek.token = peekedBeginArray
		return r.peek.token, nil
	case '\'':
		if !r.lenient {
			return peekedNone, r.syntaxErrorf("unexpected \"'\", strings must be double-quoted")
		}
		_ = r.src.skip(1)
		r.appendPrefixByte(c)
		r.peek.token = peekedSingleQuoted
		return r.peek.token, nil
	case '"':
		_ = r.src.skip(1)
		r.appendPrefixByte(c)
		r.peek.token = peekedDoubleQuoted
		return r.peek.token, nil
	case ',':
		// A comma where a value was expected means null in lenient mode
		// only (spec.md §6 lenient edge cases: "[, , 3]").
		if r.lenient && r.scope.top() == scopeNonemptyArray {
			r.peek.lexemeLength = 0
			r.peek.token = peekedNull
			return r.peek.token, nil
		}
		return peekedNone, r.syntaxErrorf("unexpected ','")
	}

	if kw, ok, err := r.peekKeyword(c); ok || err != nil {
		if err != nil {
			return peekedNone, err
		}
		r.peek.token = kw
		return r.peek.token, nil
	}

	if num, ok, err := r.peekNumber(c); ok || err != nil {
		if err != nil {
			return peekedNone, err
		}
		r.peek.token = num
		return r.peek.token, nil
	}

	if !r.isLiteral(c) || !r.lenient {
		return peekedNone, r.syntaxErrorf("unexpected character %q", c)
	}
	r.peek.token = peekedUnquoted
	return r.peek.token, nil
}

// peekKeyword matches "true", "false", or "null" case-insensitively
// starting at the already-peeked first byte c. It rejects inputs like
// "trues" or "nullsoft" by requiring the match be followed by EOF or a
// non-literal byte (spec.md §4.D). It does not consume anything: per
// spec.md §3's invariant, a peeked token only requires its bytes to already
// be *buffered*, not yet skipped past — consumption happens when the token
// is actually read (nextBoolean/nextNull) or streamed.
func (r *Reader) peekKeyword(c byte) (peeked, bool, error) {
	var word string
	var kind peeked
	switch c {
	case 't', 'T':
		word, kind = "true", peekedTrue
	case 'f', 'F':
		word, kind = "false", peekedFalse
	case 'n', 'N':
		word, kind = "null", peekedNull
	default:
		return peekedNone, false, nil
	}

	ok, err := r.src.request(len(word))
	if err != nil {
		return peekedNone, false, r.wrapReadError(err)
	}
	if !ok {
		return peekedNone, false, nil
	}
	for i := 0; i < len(word); i++ {
		b, _ := r.src.getByte(i)
		if lower(b) != word[i] {
			return peekedNone, false, nil
		}
	}
	// Require the keyword not be a prefix of a longer literal.
	hasMore, err := r.src.request(len(word) + 1)
	if err != nil {
		return peekedNone, false, r.wrapReadError(err)
	}
	if hasMore {
		next, _ := r.src.getByte(len(word))
		if r.isLiteral(next) {
			return peekedNone, false, nil
		}
	}
	r.peek.lexemeLength = len(word)
	return kind, true, nil
}

// consumeLexeme skips and (if sink is set) writes the lexemeLength bytes
// recorded by peekKeyword — the shared "finalize a scanned keyword" step
// used by NextBoolean/NextNull/SkipValue/streamValueInternal alike (numbers
// go through consumeNumberLexeme instead).
func (r *Reader) consumeLexeme(sink io.Writer) error {
	n := r.peek.lexemeLength
	s, err := r.src.readUTF8(n)
	if err != nil {
		return r.wrapReadError(err)
	}
	writeString(sink, s)
	return nil
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
