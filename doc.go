// Package jstream is a pull-driven, streaming UTF-8 JSON tokenizer in the
// style of Gson's JsonReader and Moshi's JsonReader: a single token of
// lookahead over a growable buffered byte source, with no intermediate
// object model. Callers walk a document with BeginObject/EndObject,
// BeginArray/EndArray, NextName, and the NextString/NextLong/NextDouble/
// NextBoolean/NextNull family, consulting Peek when the shape of the next
// token isn't known in advance.
//
// # Lenient mode
//
// By default the Reader accepts only strict JSON (RFC 8259). Lenient(true)
// widens this to a practical JSON superset seen in hand-edited
// configuration and log formats: // and /* */ and # comments,
// single-quoted and unquoted names/strings, ; as a statement separator, =
// and => in place of :, a trailing comma before a closing bracket treated
// as a null element, and tolerance for NaN/Infinity.
//
// # Streaming passthrough
//
// StreamValue copies the next value to an io.Writer byte-for-byte,
// including any whitespace or comments nested within it, without building
// an intermediate representation. NextSource hands back an io.Reader over
// the same bytes for callers that would rather pull than push.
// StreamDoubleQuotedStringUnescape instead decodes a string's escapes
// (combining UTF-16 surrogate pairs) while copying.
//
// # Testing
//
// The scanner's number and escape sub-machines are covered by table-driven
// tests against the property list in the package's design notes, and by
// native fuzz tests seeded from a corpus of both well-formed and
// intentionally malformed documents.
package jstream
