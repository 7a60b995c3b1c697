package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("bad escape")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing", missingField("author name", "authors[0].name"), `missing field "author name" at authors[0].name`},
		{"wrong type", wrongType("comment", "body.comment"), `field "comment" has the wrong type at body.comment`},
		{"cardinality", invalidCardinality("reference type", "type"), `field "reference type" must have exactly one value at type`},
		{"enum", unknownEnumerationValue("reference type", "type", "x"), `unknown reference type "x" at type`},
		{"identifier", invalidIdentifier("update uri", "u", "a b", cause), `field "update uri" is not a valid IRI: "a b" at u: bad escape`},
		{"no path", missingField("hash algorithm", ""), `missing field "hash algorithm"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("loading: %w", missingField("body", "body"))
	assert.True(t, IsKind(err, KindMissingField))
	assert.False(t, IsKind(err, KindWrongType))
	assert.Equal(t, KindMissingField, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := invalidIdentifier("reference uri", "p", "x", cause)
	assert.ErrorIs(t, err, cause)

	var nilErr *Error
	assert.Nil(t, nilErr.Unwrap())
	assert.Equal(t, "<nil>", nilErr.Error())
}
