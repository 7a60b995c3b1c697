package vocabulary

import (
	"strings"
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRIs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"HashAlgorithm", HashAlgorithm, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#hashAlgorithm"},
		{"Authors", Authors, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#authors"},
		{"Body", Body, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#body"},
		{"BodyReferences", BodyReferences, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#references"},
		{"BodyComment", BodyComment, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#comment"},
		{"BodyExternalUpdates", BodyExternalUpdates, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#externalUpdates"},
		{"UpdateTitle", UpdateTitle, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#update-title"},
		{"UpdateURI", UpdateURI, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#update-uri"},
		{"ReferenceTypeIRI", ReferenceTypeIRI, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#referenceType"},
		{"GovernanceMetadataReference", GovernanceMetadataReference, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#GovernanceMetadataReference"},
		{"OtherReference", OtherReference, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#OtherReference"},
		{"ReferenceLabel", ReferenceLabel, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#reference-label"},
		{"ReferenceURI", ReferenceURI, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#reference-uri"},
		{"AuthorName", AuthorName, "http://xmlns.com/foaf/0.1/name"},
		{"AuthorWitness", AuthorWitness, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#witness"},
		{"WitnessAlgorithm", WitnessAlgorithm, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#witnessAlgorithm"},
		{"WitnessPublicKey", WitnessPublicKey, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#publicKey"},
		{"WitnessSignature", WitnessSignature, "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFieldsRegistered(t *testing.T) {
	for _, f := range Fields() {
		t.Run(f.Predicate, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(f.Predicate)
			require.NotNil(t, meta, "predicate %s not registered", f.Predicate)
			assert.Equal(t, f.IRI, meta.StandardIRI)
			assert.Equal(t, f.DataType, meta.DataType)
			assert.NotEmpty(t, meta.Description)
		})
	}
}

func TestFieldsUnique(t *testing.T) {
	names := map[string]bool{}
	iris := map[string]bool{}
	predicates := map[string]bool{}
	for _, f := range Fields() {
		assert.False(t, names[f.Name], "duplicate name %q", f.Name)
		assert.False(t, iris[f.IRI], "duplicate IRI %q", f.IRI)
		assert.False(t, predicates[f.Predicate], "duplicate predicate %q", f.Predicate)
		names[f.Name] = true
		iris[f.IRI] = true
		predicates[f.Predicate] = true

		assert.Len(t, strings.Split(f.Predicate, "."), 3, "predicate %q is not domain.category.property", f.Predicate)
	}
}

func TestLookup(t *testing.T) {
	f, ok := Lookup(NameAuthorName)
	require.True(t, ok)
	assert.Equal(t, FoafName, f.IRI)
	assert.Equal(t, "name", f.Key)

	f, ok = LookupIRI(OtherReference)
	require.True(t, ok)
	assert.Equal(t, NameOtherReference, f.Name)

	_, ok = Lookup("no such field")
	assert.False(t, ok)

	assert.Panics(t, func() { MustLookup("no such field") })
}

func TestFieldsReturnsCopy(t *testing.T) {
	a := Fields()
	a[0].IRI = "mutated"

	b := Fields()
	assert.Equal(t, HashAlgorithm, b[0].IRI)
	f, _ := Lookup(NameHashAlgorithm)
	assert.Equal(t, HashAlgorithm, f.IRI)
}
