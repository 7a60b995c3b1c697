package vocabulary

// Namespace is the base IRI for CIP-100 terms.
const Namespace = "https://github.com/cardano-foundation/CIPs/blob/master/CIP-0100/README.md#"

// FoafName is the FOAF name property, used for author display names.
const FoafName = "http://xmlns.com/foaf/0.1/name"

// Document-level property IRIs.
const (
	// HashAlgorithm names the algorithm used to hash the document for signing.
	HashAlgorithm = Namespace + "hashAlgorithm"

	// Authors links a document to its cosigning authors.
	// Range: author node, repeated.
	Authors = Namespace + "authors"

	// Body links a document to its body.
	// Range: body node.
	Body = Namespace + "body"
)

// Body property IRIs.
const (
	// BodyReferences links a body to referenced documents.
	// Range: reference node, repeated.
	BodyReferences = Namespace + "references"

	// BodyComment is the free-form comment of the body.
	BodyComment = Namespace + "comment"

	// BodyExternalUpdates links a body to external update feeds.
	// Range: update node, repeated.
	BodyExternalUpdates = Namespace + "externalUpdates"
)

// Update property IRIs.
const (
	UpdateTitle = Namespace + "update-title"
	UpdateURI   = Namespace + "update-uri"
)

// Reference property IRIs.
const (
	// ReferenceTypeIRI is the term declaring a reference's kind.
	ReferenceTypeIRI = Namespace + "referenceType"

	ReferenceLabel = Namespace + "reference-label"
	ReferenceURI   = Namespace + "reference-uri"
)

// Class IRIs used as reference type tags.
const (
	// GovernanceMetadataReference tags a reference to another CIP-100
	// document.
	GovernanceMetadataReference = Namespace + "GovernanceMetadataReference"

	// OtherReference tags a reference to any other kind of document.
	OtherReference = Namespace + "OtherReference"
)

// Author and witness property IRIs.
const (
	// AuthorName is the author's self-reported display name.
	AuthorName = FoafName

	// AuthorWitness links an author to their witness.
	// Range: witness node.
	AuthorWitness = Namespace + "witness"

	WitnessAlgorithm = Namespace + "witnessAlgorithm"
	WitnessPublicKey = Namespace + "publicKey"
	WitnessSignature = Namespace + "signature"
)
