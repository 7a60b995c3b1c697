// Package vocabulary is the field schema registry for CIP-100 governance
// metadata.
//
// It maps semantic field names ("author name", "reference uri") to the IRIs
// that appear as predicates in expanded JSON-LD, and holds the two class IRIs
// used as reference type tags. The table is built at init and is read-only
// afterwards, so it is safe for concurrent use.
//
// Each field is also registered with the semstreams predicate vocabulary
// under a dotted name (cip100.<entity>.<property>):
//
//	import "github.com/c360studio/semstreams/vocabulary"
//
//	meta := vocabulary.GetPredicateMetadata("cip100.author.name")
//	// meta.StandardIRI == "http://xmlns.com/foaf/0.1/name"
package vocabulary
