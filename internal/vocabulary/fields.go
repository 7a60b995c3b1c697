package vocabulary

import "github.com/c360studio/semstreams/vocabulary"

// Field binds a semantic field name to the IRI used as its predicate (or
// type tag) in expanded JSON-LD.
type Field struct {
	// Name is the human-readable field name used in error messages
	// (e.g. "author name").
	Name string

	// Key is the path segment used when reporting where a field sits in a
	// document (e.g. "name" in "authors[0].name").
	Key string

	// Predicate is the dotted semstreams predicate the field is registered
	// under.
	Predicate string

	// IRI is the canonical identifier bound in the source graph.
	IRI string

	// DataType is "string", "iri", "node", "array" or "class".
	DataType string

	Description string
}

// Semantic field names.
const (
	NameHashAlgorithm       = "hash algorithm"
	NameAuthors             = "authors"
	NameBody                = "body"
	NameReferences          = "references"
	NameComment             = "comment"
	NameExternalUpdates     = "external updates"
	NameUpdateTitle         = "update title"
	NameUpdateURI           = "update uri"
	NameReferenceType       = "reference type"
	NameReferenceLabel      = "reference label"
	NameReferenceURI        = "reference uri"
	NameAuthorName          = "author name"
	NameAuthorWitness       = "author witness"
	NameWitnessAlgorithm    = "witness algorithm"
	NameWitnessPublicKey    = "witness public key"
	NameWitnessSignature    = "witness signature"
	NameGovernanceReference = "governance metadata reference"
	NameOtherReference      = "other reference"
)

// fields is the registry. It is filled once below and never written again.
var fields = []Field{
	{NameHashAlgorithm, "hash_algorithm", "cip100.document.hash_algorithm", HashAlgorithm, "string", "Algorithm used to hash the document for signing"},
	{NameAuthors, "authors", "cip100.document.authors", Authors, "array", "Authors cosigning the document"},
	{NameBody, "body", "cip100.document.body", Body, "node", "Body of the document"},
	{NameReferences, "references", "cip100.body.references", BodyReferences, "array", "Documents referenced by the body"},
	{NameComment, "comment", "cip100.body.comment", BodyComment, "string", "Free-form comment"},
	{NameExternalUpdates, "external_updates", "cip100.body.external_updates", BodyExternalUpdates, "array", "Locations where updates may be found"},
	{NameUpdateTitle, "title", "cip100.update.title", UpdateTitle, "string", "Title of the update source"},
	{NameUpdateURI, "uri", "cip100.update.uri", UpdateURI, "iri", "IRI of the update source"},
	{NameReferenceType, "type", "cip100.reference.type", ReferenceTypeIRI, "class", "Kind of referenced document"},
	{NameReferenceLabel, "label", "cip100.reference.label", ReferenceLabel, "string", "Label displayed for the reference"},
	{NameReferenceURI, "uri", "cip100.reference.uri", ReferenceURI, "iri", "IRI of the referenced document"},
	{NameAuthorName, "name", "cip100.author.name", AuthorName, "string", "Self-reported author display name"},
	{NameAuthorWitness, "witness", "cip100.author.witness", AuthorWitness, "node", "Witness attesting the author's approval"},
	{NameWitnessAlgorithm, "algorithm", "cip100.witness.algorithm", WitnessAlgorithm, "string", "Signing algorithm"},
	{NameWitnessPublicKey, "public_key", "cip100.witness.public_key", WitnessPublicKey, "string", "Public key of the signer"},
	{NameWitnessSignature, "signature", "cip100.witness.signature", WitnessSignature, "string", "Signature over the document"},
	{NameGovernanceReference, "type", "cip100.class.governance_reference", GovernanceMetadataReference, "class", "Reference to another CIP-100 document"},
	{NameOtherReference, "type", "cip100.class.other_reference", OtherReference, "class", "Reference to a non CIP-100 document"},
}

var (
	byName = make(map[string]Field, len(fields))
	byIRI  = make(map[string]Field, len(fields))
)

func init() {
	for _, f := range fields {
		byName[f.Name] = f
		byIRI[f.IRI] = f

		vocabulary.Register(f.Predicate,
			vocabulary.WithDescription(f.Description),
			vocabulary.WithDataType(f.DataType),
			vocabulary.WithIRI(f.IRI))
	}
}

// Fields returns a copy of the registry in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the field registered under a semantic name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// LookupIRI returns the field bound to an IRI.
func LookupIRI(iri string) (Field, bool) {
	f, ok := byIRI[iri]
	return f, ok
}

// MustLookup is like Lookup but panics on an unknown name.
func MustLookup(name string) Field {
	f, ok := byName[name]
	if !ok {
		panic("vocabulary: unknown field " + name)
	}
	return f
}
