// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testCIDv0 = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	testCIDv1 = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType SourceType
		wantNorm string
	}{
		{"https", "https://example.com/meta.jsonld", SourceHTTP, "https://example.com/meta.jsonld"},
		{"http", "http://example.com/meta.json", SourceHTTP, "http://example.com/meta.json"},
		{"http without host", "http:///meta.json", SourceUnknown, "http:///meta.json"},
		{"ipfs v0", "ipfs://" + testCIDv0, SourceIPFS, "ipfs://" + testCIDv0},
		{"ipfs v1 with path", "ipfs://" + testCIDv1 + "/meta.jsonld", SourceIPFS, "ipfs://" + testCIDv1 + "/meta.jsonld"},
		{"ipfs bad cid", "ipfs://not-a-cid", SourceUnknown, "ipfs://not-a-cid"},
		{"file url", "file:///tmp/meta.jsonld", SourceFile, "/tmp/meta.jsonld"},
		{"bare path", "testdata/meta.jsonld", SourceFile, "testdata/meta.jsonld"},
		{"other scheme", "ftp://example.com/meta.json", SourceUnknown, "ftp://example.com/meta.json"},
		{"empty", "", SourceUnknown, ""},
		{"whitespace trimmed", "  https://example.com/a.json  ", SourceHTTP, "https://example.com/a.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotNorm := Classify(tt.input)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantNorm, gotNorm)
		})
	}
}

func TestSourceType_String(t *testing.T) {
	assert.Equal(t, "http", SourceHTTP.String())
	assert.Equal(t, "ipfs", SourceIPFS.String())
	assert.Equal(t, "file", SourceFile.String())
	assert.Equal(t, "unknown", SourceUnknown.String())
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"url with filename", "https://example.com/drep/meta.jsonld", "meta-" + shortHash("https://example.com/drep/meta.jsonld")},
		{"url no filename", "https://example.com/", hashSlug("https://example.com/")},
		{"ipfs", "ipfs://" + testCIDv0, "ipfs-" + testCIDv0},
		{"ipfs with path", "ipfs://" + testCIDv1 + "/meta.jsonld", "ipfs-" + testCIDv1 + "-" + shortHash("ipfs://"+testCIDv1+"/meta.jsonld")},
		{"file", "/var/data/proposal 1.json", "proposal-1-" + shortHash("/var/data/proposal 1.json")},
		{"unknown", "ftp://example.com/x", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.input))
		})
	}
}

func TestSlug_DistinctForSharedFileNames(t *testing.T) {
	alice := Slug("https://a.example/alice/metadata.jsonld")
	bob := Slug("https://b.example/bob/metadata.jsonld")
	assert.NotEqual(t, alice, bob)
	assert.True(t, strings.HasPrefix(alice, "metadata-"))
	assert.True(t, strings.HasPrefix(bob, "metadata-"))

	assert.NotEqual(t, Slug("/srv/a/proposal.jsonld"), Slug("/srv/b/proposal.jsonld"))
	assert.NotEqual(t,
		Slug("ipfs://"+testCIDv1+"/a.jsonld"),
		Slug("ipfs://"+testCIDv1+"/b.jsonld"))

	// Stable across calls and surrounding whitespace.
	assert.Equal(t, alice, Slug("  https://a.example/alice/metadata.jsonld "))
}

func TestHashSlug(t *testing.T) {
	s := hashSlug("https://example.com/")
	assert.Len(t, s, len("url-")+16)
	assert.Equal(t, s, hashSlug("https://example.com/"))
	assert.NotEqual(t, s, hashSlug("https://example.org/"))
}

func TestGatewayURL(t *testing.T) {
	assert.Equal(t, "https://ipfs.io/ipfs/"+testCIDv0,
		gatewayURL("https://ipfs.io/ipfs/", "ipfs://"+testCIDv0))
	assert.Equal(t, "https://gw.example/ipfs/"+testCIDv1+"/meta.jsonld",
		gatewayURL("https://gw.example/ipfs", "ipfs://"+testCIDv1+"/meta.jsonld"))
}
