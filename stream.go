package jstream

import (
	"io"
	"strings"
)

// peekForStream classifies the next token the way StreamValue/NextSource
// need: the streamed output starts at the value itself (spec.md §4.F,
// readValue). Whitespace, comments and separators (',' or ':') that
// precede the outer value are never streamed, wherever the reader sits —
// at the document root or right after a NextName() call — and whether the
// token was classified here or by an earlier plain Peek(). Only the
// value's own opening byte, if doPeek already consumed one ('{', '[', or
// a quote), is kept in the prefix for the caller to flush.
func (r *Reader) peekForStream() (peeked, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return p, err
	}
	switch p {
	case peekedBeginObject, peekedBeginArray, peekedDoubleQuoted, peekedSingleQuoted:
		r.peek.prefix = r.peek.prefix[len(r.peek.prefix)-1:]
	default:
		r.peek.prefix = nil
	}
	return p, nil
}

// StreamValue copies the next JSON value byte-for-byte to sink, including
// whatever whitespace and comments sit between its tokens, without decoding
// it. This is the Passthrough Router of SPEC_FULL.md §4.F: containers are
// walked recursively so every byte between BEGIN/END tokens is mirrored,
// while scalars are simply echoed as scanned. Escape sequences inside
// strings are copied verbatim — use StreamDoubleQuotedStringUnescape when
// decoded text is required.
func (r *Reader) StreamValue(sink io.Writer) error {
	p, err := r.peekForStream()
	if err != nil {
		return err
	}
	writeBytes(sink, r.peek.prefix)
	r.peek.prefix = nil
	if p == peekedEndArray || p == peekedEndObject || p == peekedEOF {
		return r.dataErrorf("no value available, found %s", p.publicKind())
	}
	return r.streamValueInternal(sink, p)
}

// streamValueInternal assumes the caller has already classified p and
// flushed whatever prefix bytes doPeek captured while doing so, and drives
// the rest of the value through to completion.
func (r *Reader) streamValueInternal(sink io.Writer, p peeked) error {
	switch p {
	case peekedBeginArray:
		return r.streamArray(sink)
	case peekedBeginObject:
		return r.streamObject(sink)
	case peekedDoubleQuoted:
		r.peek.clear()
		if err := r.copyQuotedRaw(sink, '"'); err != nil {
			return err
		}
		r.advance()
		return nil
	case peekedSingleQuoted:
		r.peek.clear()
		if err := r.copyQuotedRaw(sink, '\''); err != nil {
			return err
		}
		r.advance()
		return nil
	case peekedUnquoted:
		r.peek.clear()
		s, err := r.scanUnquoted()
		if err != nil {
			return err
		}
		writeString(sink, s)
		r.advance()
		return nil
	case peekedBuffered:
		r.peek.clear()
		writeString(sink, r.peek.peekedString)
		r.advance()
		return nil
	case peekedTrue, peekedFalse, peekedNull:
		if err := r.consumeLexeme(sink); err != nil {
			return err
		}
		r.advance()
		return nil
	case peekedLong, peekedNumber:
		if _, err := r.consumeNumberLexeme(sink); err != nil {
			return err
		}
		r.advance()
		return nil
	default:
		return r.dataErrorf("no value available, found %s", p.publicKind())
	}
}

// peekStreamStep classifies the next token while already inside a
// container being streamed and flushes whatever it consumed to sink —
// separators, whitespace, and comments are always captured once past the
// outer value's own opening byte (writeIntermediates=true throughout),
// per spec.md §4.F.
func (r *Reader) peekStreamStep(sink io.Writer) (peeked, error) {
	p, err := r.doPeek(true)
	if err != nil {
		return peekedNone, err
	}
	writeBytes(sink, r.peek.prefix)
	r.peek.prefix = nil
	return p, nil
}

func (r *Reader) streamArray(sink io.Writer) error {
	if err := r.scope.push(scopeEmptyArray); err != nil {
		return err
	}
	r.peek.clear()
	for {
		p, err := r.peekStreamStep(sink)
		if err != nil {
			return err
		}
		if p == peekedEndArray {
			r.scope.pop()
			r.peek.clear()
			r.advance()
			return nil
		}
		if err := r.streamValueInternal(sink, p); err != nil {
			return err
		}
	}
}

func (r *Reader) streamObject(sink io.Writer) error {
	if err := r.scope.push(scopeEmptyObject); err != nil {
		return err
	}
	r.peek.clear()
	for {
		p, err := r.peekStreamStep(sink)
		if err != nil {
			return err
		}
		if p == peekedEndObject {
			r.scope.pop()
			r.peek.clear()
			r.advance()
			return nil
		}
		if !r.isNameToken(p) {
			return r.dataErrorf("expected NAME but was %s", p.publicKind())
		}
		if err := r.streamName(sink, p); err != nil {
			return err
		}
		p, err = r.peekStreamStep(sink)
		if err != nil {
			return err
		}
		if err := r.streamValueInternal(sink, p); err != nil {
			return err
		}
	}
}

// streamName copies a member name's raw bytes to sink while also decoding
// it (from the raw, still-escaped text) to keep the JSONPath accurate.
// Decoding from the raw text rather than re-scanning means escape sequences
// are carried through into the path verbatim rather than unescaped — an
// acceptable approximation, since paths exist for diagnostics, not for
// driving further lookups.
func (r *Reader) streamName(sink io.Writer, p peeked) error {
	r.peek.clear()
	var raw string
	var err error
	switch p {
	case peekedDoubleQuotedName:
		raw, err = r.copyQuotedRawCapture(sink, '"')
	case peekedSingleQuotedName:
		raw, err = r.copyQuotedRawCapture(sink, '\'')
	case peekedUnquotedName:
		raw, err = r.scanUnquoted()
		writeString(sink, raw)
	case peekedBufferedName:
		raw = r.peek.peekedString
		writeString(sink, raw)
	default:
		return r.stateErrorf("not a name token")
	}
	if err != nil {
		return err
	}
	r.scope.setName(raw)
	return nil
}

// copyQuotedRaw copies a quoted string's body to sink byte-for-byte,
// escapes included, having already consumed the opening quote; it consumes
// through (and writes) the closing terminator.
func (r *Reader) copyQuotedRaw(sink io.Writer, terminator byte) error {
	for {
		idx, err := r.src.indexOfElement(quoteOrBackslashSet(terminator))
		if err != nil {
			return r.wrapReadError(err)
		}
		if idx < 0 {
			return r.syntaxErrorf("unterminated string")
		}
		chunk, err := r.src.readUTF8(idx)
		if err != nil {
			return r.wrapReadError(err)
		}
		writeString(sink, chunk)

		ctrl, err := r.src.readByte()
		if err != nil {
			return r.wrapReadError(err)
		}
		writeByte(sink, ctrl)
		if ctrl == terminator {
			return nil
		}
		esc, err := r.src.readByte()
		if err != nil {
			return r.wrapReadError(err)
		}
		writeByte(sink, esc)
		if esc == 'u' {
			hex, err := r.src.readUTF8(4)
			if err != nil {
				return r.wrapReadError(err)
			}
			writeString(sink, hex)
		}
	}
}

// copyQuotedRawCapture behaves like copyQuotedRaw but also returns the raw
// (still-escaped) text that was copied.
func (r *Reader) copyQuotedRawCapture(sink io.Writer, terminator byte) (string, error) {
	var b strings.Builder
	tee := io.MultiWriter(discardOrSink(sink), &b)
	err := r.copyQuotedRaw(tee, terminator)
	return b.String(), err
}

// StreamDoubleQuotedStringUnescape decodes the current double-quoted string
// token, combining surrogate pairs into full UTF-8 code points, and writes
// the decoded text to sink, surrounded by the same opening and closing `"`
// bytes the source had (spec.md §4.F). Unlike StreamValue, the body itself
// is decoded rather than copied byte-for-byte.
func (r *Reader) StreamDoubleQuotedStringUnescape(sink io.Writer) error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if p != peekedDoubleQuoted {
		return r.dataErrorf("expected STRING but was %s", p.publicKind())
	}
	writeByte(sink, '"')
	r.peek.prefix = nil
	r.peek.clear()
	var b strings.Builder
	if err := r.unescapeQuotedTo('"', &b); err != nil {
		return err
	}
	writeString(sink, b.String())
	writeByte(sink, '"')
	r.advance()
	return nil
}

// PeekDryRun classifies the next token exactly like Peek but documents, via
// its name, that it is always safe to call speculatively: it never consumes
// bytes nor mutates reader state beyond the monotone peek memo.
func (r *Reader) PeekDryRun() (TokenKind, error) {
	return r.Peek()
}

// NextValueIsNullDryRun reports whether the upcoming value token is a JSON
// null, without consuming it.
func (r *Reader) NextValueIsNullDryRun() (bool, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return false, err
	}
	return p == peekedNull, nil
}
