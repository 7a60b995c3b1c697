// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IRI is an absolute internationalized resource identifier that has passed
// ParseIRI. The zero value is the empty (invalid) IRI.
type IRI string

var (
	ErrEmptyIRI     = errors.New("empty IRI")
	ErrRelativeIRI  = errors.New("IRI has no scheme")
	ErrIRICharacter = errors.New("IRI contains a forbidden character")
	ErrIRIEscape    = errors.New("IRI contains a malformed percent escape")
	ErrIRIFragment  = errors.New("IRI contains more than one fragment delimiter")
	ErrIRIEncoding  = errors.New("IRI is not valid UTF-8")
)

// forbiddenIRIChars are ASCII characters RFC 3987 never allows unescaped.
const forbiddenIRIChars = "<>\"{}|\\^`"

// ParseIRI validates raw as an absolute IRI. The input is not normalized:
// the returned IRI is byte-identical to raw.
func ParseIRI(raw string) (IRI, error) {
	if raw == "" {
		return "", ErrEmptyIRI
	}
	if !utf8.ValidString(raw) {
		return "", ErrIRIEncoding
	}
	for i, r := range raw {
		switch {
		case r < 0x20 || r == 0x7f:
			return "", fmt.Errorf("%w: control character at offset %d", ErrIRICharacter, i)
		case unicode.IsSpace(r):
			return "", fmt.Errorf("%w: whitespace at offset %d", ErrIRICharacter, i)
		case r < utf8.RuneSelf && strings.ContainsRune(forbiddenIRIChars, r):
			return "", fmt.Errorf("%w: %q at offset %d", ErrIRICharacter, r, i)
		case r == '%':
			if i+2 >= len(raw) || !isHex(raw[i+1]) || !isHex(raw[i+2]) {
				return "", fmt.Errorf("%w at offset %d", ErrIRIEscape, i)
			}
		}
	}
	if strings.Count(raw, "#") > 1 {
		return "", ErrIRIFragment
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		return "", ErrRelativeIRI
	}
	return IRI(raw), nil
}

// MustParseIRI is like ParseIRI but panics on error. Intended for constants
// and tests.
func MustParseIRI(raw string) IRI {
	iri, err := ParseIRI(raw)
	if err != nil {
		panic(fmt.Sprintf("types: invalid IRI %q: %v", raw, err))
	}
	return iri
}

// String returns the IRI as published.
func (i IRI) String() string { return string(i) }

// Scheme returns the lower-cased scheme of the IRI.
func (i IRI) Scheme() string {
	s, _, ok := strings.Cut(string(i), ":")
	if !ok {
		return ""
	}
	return strings.ToLower(s)
}

// MarshalText implements encoding.TextMarshaler.
func (i IRI) MarshalText() ([]byte, error) {
	return []byte(i), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects values that
// do not pass ParseIRI.
func (i *IRI) UnmarshalText(text []byte) error {
	parsed, err := ParseIRI(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
