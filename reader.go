package jstream

import (
	"bytes"
	"io"
	"log/slog"
)

const defaultBufferSize = 8192

// Reader is a pull-driven, streaming UTF-8 JSON tokenizer: a single byte of
// lookahead over a growable buffered source, generalized from the teacher's
// bufio-backed Decoder to the Gson/Moshi-style JsonReader protocol described
// in SPEC_FULL.md §6.
type Reader struct {
	src   source
	scope *scopeStack
	peek  peekState

	lenient       bool
	failOnUnknown bool
	logger        *slog.Logger

	openSource *ValueSource
	closed     bool
}

// NewReader constructs a Reader over r using the default initial buffer
// size, mirroring the teacher's NewDecoder.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultBufferSize)
}

// NewReaderSize constructs a Reader over r with the given initial buffer
// size. Values below 512 are rounded up, matching bufferedSource's own
// floor.
func NewReaderSize(r io.Reader, size int) *Reader {
	rd := &Reader{
		src:   newBufferedSource(r, size),
		scope: newScopeStack(0),
	}
	rd.handleBOM()
	return rd
}

// handleBOM strips a leading UTF-8 byte-order mark, mirroring the teacher's
// handleBOM in jibby.go. Any other leading bytes, a UTF-16 BOM included,
// are left in the stream for the scanner, since this reader only speaks
// UTF-8.
func (r *Reader) handleBOM() {
	ok, err := r.src.request(2)
	if err != nil || !ok {
		return
	}
	b0, _ := r.src.getByte(0)
	b1, _ := r.src.getByte(1)
	if b0 == 0xFE && b1 == 0xFF || b0 == 0xFF && b1 == 0xFE {
		// UTF-16 BOM: leave it for the scanner to reject as invalid input
		// on first read rather than silently misinterpreting the stream.
		return
	}
	ok3, err := r.src.request(3)
	if err != nil || !ok3 {
		return
	}
	b2, _ := r.src.getByte(2)
	if b0 == 0xEF && b1 == 0xBB && b2 == 0xBF {
		_ = r.src.skip(3)
	}
}

// Lenient enables the comment/single-quote/unquoted-literal/trailing-comma
// JSON superset described in SPEC_FULL.md §7.
func (r *Reader) Lenient(v bool) *Reader { r.lenient = v; return r }

// IsLenient reports whether lenient mode is enabled.
func (r *Reader) IsLenient() bool { return r.lenient }

// FailOnUnknown makes SkipValue/SkipName return a DataError instead of
// silently discarding the value.
func (r *Reader) FailOnUnknown(v bool) *Reader { r.failOnUnknown = v; return r }

// MaxDepth overrides the nesting depth ceiling. Must be called before the
// first token is read.
func (r *Reader) MaxDepth(n int) *Reader {
	r.scope.maxDepth = n
	return r
}

// Logger attaches a structured logger for optional diagnostics, written at
// Debug level through logDebug. A nil logger (the default) disables all
// diagnostic logging. No Reader operation calls logDebug, so the attached
// logger receives no events.
func (r *Reader) Logger(l *slog.Logger) *Reader { r.logger = l; return r }

func (r *Reader) logDebug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// Path renders the current JSONPath, e.g. "$.foo[2].bar".
func (r *Reader) Path() string { return r.scope.String() }

// CurrentIndex returns the index of the array element currently being read,
// or -1 outside of array scope.
func (r *Reader) CurrentIndex() int {
	if r.scope.top() != scopeNonemptyArray && r.scope.top() != scopeEmptyArray {
		return -1
	}
	return r.scope.currentIndex()
}

// advance clears the peeked token, accounting the array index if the value
// just consumed sat directly inside an array.
func (r *Reader) advance() {
	if r.scope.top() == scopeNonemptyArray {
		r.scope.incIndex()
	}
	r.peek.clear()
}

func (r *Reader) ensureOpen() error {
	if r.closed || r.scope.top() == scopeClosed {
		return r.stateErrorf("reader is closed")
	}
	return nil
}

// drainStreamingValueIfOpen force-discards whatever remains of a
// ValueSource handed out by NextSource that the caller never fully read,
// and stops tracking it as open (so Close no longer rejects). The value's
// bytes were already taken from the source when NextSource ran, so this
// only empties the ValueSource's own buffer. It discards rather than
// forwards: there is no sink available at this point to forward to anyway,
// since it runs inside doPeek before any token has been classified.
func (r *Reader) drainStreamingValueIfOpen() error {
	if r.openSource == nil {
		return nil
	}
	vs := r.openSource
	r.openSource = nil
	_, err := io.Copy(io.Discard, vs)
	if err != nil {
		return r.wrapReadError(err)
	}
	return nil
}

func discardOrSink(sink io.Writer) io.Writer {
	if sink == nil {
		return io.Discard
	}
	return sink
}

// Peek classifies the next token without consuming it.
func (r *Reader) Peek() (TokenKind, error) {
	if err := r.ensureOpen(); err != nil {
		return EndDocument, err
	}
	p, err := r.doPeek(false)
	if err != nil {
		return EndDocument, err
	}
	return p.publicKind(), nil
}

// HasNext reports whether there is another element/member in the current
// array or object, or another top-level value at the document scope.
func (r *Reader) HasNext() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	return k != EndArray && k != EndObject && k != EndDocument, nil
}

// BeginArray consumes a '[' and descends into the new array scope.
func (r *Reader) BeginArray() error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if p != peekedBeginArray {
		return r.dataErrorf("expected BEGIN_ARRAY but was %s", p.publicKind())
	}
	if err := r.scope.push(scopeEmptyArray); err != nil {
		return err
	}
	r.peek.clear()
	return nil
}

// EndArray consumes a ']' and ascends out of the current array scope.
func (r *Reader) EndArray() error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if p != peekedEndArray {
		return r.dataErrorf("expected END_ARRAY but was %s", p.publicKind())
	}
	r.scope.pop()
	r.peek.clear()
	r.advance()
	return nil
}

// BeginObject consumes a '{' and descends into the new object scope.
func (r *Reader) BeginObject() error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if p != peekedBeginObject {
		return r.dataErrorf("expected BEGIN_OBJECT but was %s", p.publicKind())
	}
	if err := r.scope.push(scopeEmptyObject); err != nil {
		return err
	}
	r.peek.clear()
	return nil
}

// EndObject consumes a '}' and ascends out of the current object scope.
func (r *Reader) EndObject() error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if p != peekedEndObject {
		return r.dataErrorf("expected END_OBJECT but was %s", p.publicKind())
	}
	r.scope.pop()
	r.peek.clear()
	r.advance()
	return nil
}

func (r *Reader) isNameToken(p peeked) bool {
	switch p {
	case peekedSingleQuotedName, peekedDoubleQuotedName, peekedUnquotedName, peekedBufferedName:
		return true
	}
	return false
}

// decodeName reads the actual text of a pending name token (the doPeek call
// has already classified it and, for quoted names, consumed the opening
// quote).
func (r *Reader) decodeName(p peeked) (string, error) {
	switch p {
	case peekedDoubleQuotedName:
		return r.nextQuotedValue('"')
	case peekedSingleQuotedName:
		return r.nextQuotedValue('\'')
	case peekedUnquotedName:
		return r.scanUnquoted()
	case peekedBufferedName:
		return r.peek.peekedString, nil
	}
	return "", r.stateErrorf("not a name token")
}

// scanUnquoted reads an unquoted literal up to the next terminator byte or
// EOF.
func (r *Reader) scanUnquoted() (string, error) {
	idx, err := r.src.indexOfElement(unquotedTermSet)
	if err != nil {
		return "", r.wrapReadError(err)
	}
	if idx < 0 {
		idx = r.src.size()
		for {
			ok, err := r.src.request(idx + 1)
			if err != nil {
				return "", r.wrapReadError(err)
			}
			if !ok {
				break
			}
			idx++
		}
	}
	return r.src.readUTF8(idx)
}

// NextName consumes the current token, which must be a member name, and
// returns its decoded text.
func (r *Reader) NextName() (string, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return "", err
	}
	if !r.isNameToken(p) {
		return "", r.dataErrorf("expected NAME but was %s", p.publicKind())
	}
	name, err := r.decodeName(p)
	if err != nil {
		return "", err
	}
	r.scope.setName(name)
	r.peek.clear()
	return name, nil
}

// SkipName consumes the current member name and discards its text, recording
// "null" as its path segment (matching the teacher's convertion of an
// unreachable name into a synthetic path element).
func (r *Reader) SkipName() error {
	if r.failOnUnknown {
		return r.dataErrorf("SkipName called with FailOnUnknown enabled")
	}
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if !r.isNameToken(p) {
		return r.dataErrorf("expected NAME but was %s", p.publicKind())
	}
	if _, err := r.decodeName(p); err != nil {
		return err
	}
	r.scope.stampNullName()
	r.peek.clear()
	return nil
}

// decodeString reads the actual text of a pending string token.
func (r *Reader) decodeString(p peeked) (string, error) {
	switch p {
	case peekedDoubleQuoted:
		return r.nextQuotedValue('"')
	case peekedSingleQuoted:
		return r.nextQuotedValue('\'')
	case peekedUnquoted:
		return r.scanUnquoted()
	case peekedBuffered:
		return r.peek.peekedString, nil
	}
	return "", r.stateErrorf("not a string token")
}

func isStringToken(p peeked) bool {
	switch p {
	case peekedDoubleQuoted, peekedSingleQuoted, peekedUnquoted, peekedBuffered:
		return true
	}
	return false
}

// NextString consumes a string value token and returns its decoded text.
func (r *Reader) NextString() (string, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return "", err
	}
	if !isStringToken(p) {
		return "", r.dataErrorf("expected STRING but was %s", p.publicKind())
	}
	s, err := r.decodeString(p)
	if err != nil {
		return "", err
	}
	r.advance()
	return s, nil
}

// NextBoolean consumes a boolean literal.
func (r *Reader) NextBoolean() (bool, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return false, err
	}
	if p != peekedTrue && p != peekedFalse {
		return false, r.dataErrorf("expected BOOLEAN but was %s", p.publicKind())
	}
	if err := r.consumeLexeme(nil); err != nil {
		return false, err
	}
	v := p == peekedTrue
	r.advance()
	return v, nil
}

// NextNull consumes a null literal.
func (r *Reader) NextNull() error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if p != peekedNull {
		return r.dataErrorf("expected NULL but was %s", p.publicKind())
	}
	if err := r.consumeLexeme(nil); err != nil {
		return err
	}
	r.advance()
	return nil
}

func isNumberToken(p peeked) bool { return p == peekedLong || p == peekedNumber }

// NextLong consumes a number token and returns it as an int64, requiring an
// exact integral value.
func (r *Reader) NextLong() (int64, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return 0, err
	}
	if !isNumberToken(p) {
		return 0, r.dataErrorf("expected NUMBER but was %s", p.publicKind())
	}
	lexeme, err := r.consumeNumberLexeme(nil)
	if err != nil {
		return 0, err
	}
	n, err := r.parseLong(lexeme)
	if err != nil {
		return 0, err
	}
	r.advance()
	return n, nil
}

// NextInt consumes a number token and returns it as an int32.
func (r *Reader) NextInt() (int32, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return 0, err
	}
	if !isNumberToken(p) {
		return 0, r.dataErrorf("expected NUMBER but was %s", p.publicKind())
	}
	lexeme, err := r.consumeNumberLexeme(nil)
	if err != nil {
		return 0, err
	}
	n, err := r.parseInt(lexeme)
	if err != nil {
		return 0, err
	}
	r.advance()
	return n, nil
}

// NextDouble consumes a number token and returns it as a float64.
func (r *Reader) NextDouble() (float64, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return 0, err
	}
	if !isNumberToken(p) {
		return 0, r.dataErrorf("expected NUMBER but was %s", p.publicKind())
	}
	lexeme, err := r.consumeNumberLexeme(nil)
	if err != nil {
		return 0, err
	}
	n, err := r.parseDouble(lexeme)
	if err != nil {
		return 0, err
	}
	r.advance()
	return n, nil
}

// SelectName matches the current name token against candidates, returning
// its index and consuming it, or -1 if it matches none (leaving it
// unconsumed for a subsequent NextName). This mirrors Gson/Moshi's
// select-by-option fast path; if the name appears more than once among
// candidates, the index of its first occurrence is returned.
func (r *Reader) SelectName(candidates ...string) (int, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return -1, err
	}
	if !r.isNameToken(p) {
		return -1, r.dataErrorf("expected NAME but was %s", p.publicKind())
	}
	name, err := r.decodeName(p)
	if err != nil {
		return -1, err
	}
	for i, c := range candidates {
		if c == name {
			r.scope.setName(name)
			r.peek.clear()
			return i, nil
		}
	}
	// Not a match: buffer the decoded name so the next NextName call does
	// not re-scan the source.
	r.peek.setBuffered(name, true)
	return -1, nil
}

// SelectString matches the current string token against candidates; see
// SelectName for the matching/buffering discipline.
func (r *Reader) SelectString(candidates ...string) (int, error) {
	p, err := r.doPeek(false)
	if err != nil {
		return -1, err
	}
	if !isStringToken(p) {
		return -1, r.dataErrorf("expected STRING but was %s", p.publicKind())
	}
	s, err := r.decodeString(p)
	if err != nil {
		return -1, err
	}
	for i, c := range candidates {
		if c == s {
			r.advance()
			return i, nil
		}
	}
	r.peek.setBuffered(s, false)
	return -1, nil
}

// PromoteNameToValue lets the following NextString/NextLong/etc. read the
// pending member name as if it were a value, for object shapes where a key
// is reused as its own value marker.
func (r *Reader) PromoteNameToValue() error {
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	if !r.isNameToken(p) {
		return r.dataErrorf("expected NAME but was %s", p.publicKind())
	}
	name, err := r.decodeName(p)
	if err != nil {
		return err
	}
	r.scope.setName(name)
	r.peek.setBuffered(name, false)
	return nil
}

// SkipValue discards the current value (recursively, for containers)
// without returning it.
func (r *Reader) SkipValue() error {
	if r.failOnUnknown {
		return r.dataErrorf("SkipValue called with FailOnUnknown enabled")
	}
	p, err := r.doPeek(false)
	if err != nil {
		return err
	}
	switch p {
	case peekedBeginArray:
		if err := r.BeginArray(); err != nil {
			return err
		}
		for {
			has, err := r.HasNext()
			if err != nil {
				return err
			}
			if !has {
				break
			}
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
		return r.EndArray()
	case peekedBeginObject:
		if err := r.BeginObject(); err != nil {
			return err
		}
		for {
			has, err := r.HasNext()
			if err != nil {
				return err
			}
			if !has {
				break
			}
			if err := r.SkipName(); err != nil {
				return err
			}
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
		return r.EndObject()
	case peekedEndArray, peekedEndObject, peekedEOF:
		return r.dataErrorf("no value to skip, found %s", p.publicKind())
	default:
		if isStringToken(p) {
			_, err := r.decodeString(p)
			if err != nil {
				return err
			}
		} else if isNumberToken(p) {
			if _, err := r.consumeNumberLexeme(nil); err != nil {
				return err
			}
		} else {
			if err := r.consumeLexeme(nil); err != nil {
				return err
			}
		}
		r.advance()
		return nil
	}
}

// NextSource hands back an io.Reader over the raw bytes of the next JSON
// value (including whitespace/comments within it, but not surrounding it),
// for callers that want to copy a subtree verbatim without paying to decode
// and re-encode it. The value is scanned into memory before NextSource
// returns; any subsequent call on the Reader discards whatever of it the
// caller has not read.
func (r *Reader) NextSource() (*ValueSource, error) {
	p, err := r.peekForStream()
	if err != nil {
		return nil, err
	}
	if p == peekedEndArray || p == peekedEndObject || p == peekedEOF {
		return nil, r.stateErrorf("no value available, found %s", p.publicKind())
	}
	vs := newValueSource(r)
	r.openSource = vs
	return vs, nil
}

// PeekJSON returns an independent Reader over a snapshot of the remaining
// input: already-buffered-but-unconsumed bytes are duplicated, and further
// bytes are drawn from the same underlying stream as the original Reader.
// This is unsafe for concurrent use unless the underlying io.Reader
// tolerates being read from two places, per SPEC_FULL.md §5.
func (r *Reader) PeekJSON() *Reader {
	fork := &Reader{
		src:           r.src.peekSource(),
		scope:         cloneScopeStack(r.scope),
		peek:          r.peek,
		lenient:       r.lenient,
		failOnUnknown: r.failOnUnknown,
		logger:        r.logger,
	}
	return fork
}

func cloneScopeStack(s *scopeStack) *scopeStack {
	clone := &scopeStack{
		kinds:    append([]scopeKind(nil), s.kinds...),
		names:    append([]*string(nil), s.names...),
		indices:  append([]int(nil), s.indices...),
		maxDepth: s.maxDepth,
	}
	return clone
}

// Close releases the underlying source. The Reader is unusable afterward.
// It rejects with a StateError if a ValueSource obtained from NextSource
// has not been read through to io.EOF (SPEC_FULL.md §5); read it to io.EOF,
// or call any other Reader operation, which auto-drains it, before closing.
// Calling ValueSource.Close does not count as reading it.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	if r.openSource != nil && !r.openSource.drained() {
		return r.stateErrorf("cannot close: a ValueSource from NextSource has not been fully read")
	}
	r.closed = true
	r.scope.setTop(scopeClosed)
	r.openSource = nil
	return r.src.close()
}

// nextValueToBuffer streams the next value into a freshly allocated
// bytes.Buffer, for callers that want the bytes instead of writing to their
// own io.Writer; kept here rather than in stream.go since it is a Reader
// convenience wrapper, not part of the streaming state machine itself.
func (r *Reader) nextValueToBuffer() (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := r.StreamValue(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
