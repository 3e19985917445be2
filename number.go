package jstream

import (
	"io"
	"math"
	"math/big"
	"strconv"
)

// numberState is the 8-state number sub-machine of spec.md §4.D.
type numberState int

const (
	numNone numberState = iota
	numSign
	numDigit
	numDecimal
	numFractionDigit
	numExpE
	numExpSign
	numExpDigit
)

// peekNumber scans the number starting at the already-peeked first byte c,
// without consuming it. It simultaneously tries to accumulate the value in
// a signed 64-bit register using *negative* accumulation (starting at 0 and
// subtracting each digit) so that math.MinInt64 is representable, and
// rejects a leading zero followed by more digits (octal ambiguity). It returns peekedLong when the digits
// fit losslessly in an int64, peekedNumber for any other well-formed
// decimal, or (peekedNone, false, nil) so the caller can fall through to
// unquoted-literal handling in lenient mode.
func (r *Reader) peekNumber(c byte) (peeked, bool, error) {
	state := numNone
	i := 0
	negative := false
	var value int64
	fitsInLong := true
	leadingZero := false
	digitCount := 0

	advance := func() (byte, bool, error) {
		ok, err := r.src.request(i + 1)
		if err != nil {
			return 0, false, r.wrapReadError(err)
		}
		if !ok {
			return 0, false, nil
		}
		b, _ := r.src.getByte(i)
		return b, true, nil
	}

	b := c
	ok := true
	var err error
	for {
		switch state {
		case numNone:
			if b == '-' {
				negative = true
				state = numSign
			} else if b >= '0' && b <= '9' {
				state = numDigit
				digitCount++
				leadingZero = b == '0'
				value = -int64(b - '0')
			} else {
				return peekedNone, false, nil
			}
		case numSign:
			if b >= '0' && b <= '9' {
				state = numDigit
				digitCount++
				leadingZero = b == '0'
				value = -int64(b - '0')
			} else {
				return peekedNone, false, nil
			}
		case numDigit:
			if b >= '0' && b <= '9' {
				if leadingZero {
					// "01", "00", etc: a leading zero may not be followed
					// by another digit (spec.md §8: "01" is a reject, not
					// just a non-long NUMBER).
					return peekedNone, false, nil
				}
				digitCount++
				if fitsInLong {
					if value < (math.MinInt64+int64(b-'0'))/10 {
						fitsInLong = false
					} else {
						value = value*10 - int64(b-'0')
					}
				}
			} else if b == '.' {
				state = numDecimal
			} else if b == 'e' || b == 'E' {
				state = numExpE
			} else if r.isLiteral(b) {
				return peekedNone, false, nil
			} else {
				goto done
			}
		case numDecimal:
			if b >= '0' && b <= '9' {
				state = numFractionDigit
			} else {
				return peekedNone, false, nil
			}
		case numFractionDigit:
			if b >= '0' && b <= '9' {
				// stay
			} else if b == 'e' || b == 'E' {
				state = numExpE
			} else if r.isLiteral(b) {
				return peekedNone, false, nil
			} else {
				goto done
			}
		case numExpE:
			if b == '+' || b == '-' {
				state = numExpSign
			} else if b >= '0' && b <= '9' {
				state = numExpDigit
			} else {
				return peekedNone, false, nil
			}
		case numExpSign:
			if b >= '0' && b <= '9' {
				state = numExpDigit
			} else {
				return peekedNone, false, nil
			}
		case numExpDigit:
			if b >= '0' && b <= '9' {
				// stay
			} else if r.isLiteral(b) {
				return peekedNone, false, nil
			} else {
				goto done
			}
		}
		i++
		b, ok, err = advance()
		if err != nil {
			return peekedNone, false, err
		}
		if !ok {
			goto done
		}
	}

done:
	r.peek.lexemeLength = i

	switch state {
	case numDigit:
		if fitsInLong && digitCount > 0 {
			// value accumulates negative regardless of sign, so MinInt64 never
			// needs a negation step that would overflow. A positive literal
			// has to be flipped back before it's stored.
			if value == 0 && negative {
				// "-0" is a valid decimal but not representable as the
				// distinct long zero (spec.md §8: "-0" -> NUMBER, not LONG).
				break
			}
			if !negative {
				if value == math.MinInt64 {
					// 9223372036854775808 has no positive int64 form.
					return peekedNumber, true, nil
				}
				value = -value
			}
			r.peek.peekedLong = value
			return peekedLong, true, nil
		}
		return peekedNumber, true, nil
	case numFractionDigit, numExpDigit:
		return peekedNumber, true, nil
	default:
		return peekedNone, false, nil
	}
	return peekedNumber, true, nil
}

// consumeNumberLexeme returns the raw literal text of the pending peeked
// number, consuming it (and writing it to sink, if set) from the source.
func (r *Reader) consumeNumberLexeme(sink io.Writer) (string, error) {
	n := r.peek.lexemeLength
	s, err := r.src.readUTF8(n)
	if err != nil {
		return "", r.wrapReadError(err)
	}
	writeString(sink, s)
	return s, nil
}

// parseLong converts the peeked number/long token to an int64, using the
// fast peekedLong register when available and otherwise falling back to
// arbitrary-precision decimal parsing (big.Float), requiring an exact
// integral conversion — mirrors the teacher's convertInt fallback-on-range
// pattern in json.go, generalized to reject any fractional remainder.
func (r *Reader) parseLong(lexeme string) (int64, error) {
	if r.peek.token == peekedLong {
		return r.peek.peekedLong, nil
	}
	if n, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
		return n, nil
	}
	bf, _, err := big.ParseFloat(lexeme, 10, 200, big.ToNearestEven)
	if err != nil {
		return 0, r.dataErrorf("not a valid number: %s", lexeme)
	}
	n, acc := bf.Int64()
	if acc != big.Exact {
		return 0, r.dataErrorf("%s is not an exact integer", lexeme)
	}
	return n, nil
}

// parseInt mirrors parseLong but additionally requires the value be
// losslessly representable as an int32.
func (r *Reader) parseInt(lexeme string) (int32, error) {
	n, err := r.parseLong(lexeme)
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, r.dataErrorf("%s overflows a 32-bit integer", lexeme)
	}
	return int32(n), nil
}

// parseDouble converts the peeked number/long token to a float64, falling
// back to big.Float for values the fast strconv path cannot parse exactly,
// and rejecting NaN/Infinity unless lenient mode is on.
func (r *Reader) parseDouble(lexeme string) (float64, error) {
	if n, err := strconv.ParseFloat(lexeme, 64); err == nil {
		if (math.IsNaN(n) || math.IsInf(n, 0)) && !r.lenient {
			return 0, r.dataErrorf("NaN and infinity are not permitted in strict mode")
		}
		return n, nil
	}
	bf, _, err := big.ParseFloat(lexeme, 10, 200, big.ToNearestEven)
	if err != nil {
		return 0, r.dataErrorf("not a valid number: %s", lexeme)
	}
	n, _ := bf.Float64()
	if math.IsInf(n, 0) && !r.lenient {
		return 0, r.dataErrorf("NaN and infinity are not permitted in strict mode")
	}
	return n, nil
}
