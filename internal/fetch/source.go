// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"
)

// SourceType classifies a metadata anchor.
type SourceType int

const (
	SourceUnknown SourceType = iota
	SourceHTTP
	SourceIPFS
	SourceFile
)

func (t SourceType) String() string {
	switch t {
	case SourceHTTP:
		return "http"
	case SourceIPFS:
		return "ipfs"
	case SourceFile:
		return "file"
	default:
		return "unknown"
	}
}

// Classify determines the source type and returns the normalized form.
//
// http and https URLs need a host. ipfs://<cid>[/path] must carry a valid
// CID and is normalized to the CID's canonical string. file:// URLs and bare
// paths are files; the normalized form is the filesystem path.
func Classify(source string) (SourceType, string) {
	source = strings.TrimSpace(source)
	if source == "" {
		return SourceUnknown, source
	}

	u, err := url.Parse(source)
	if err != nil {
		return SourceUnknown, source
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return SourceUnknown, source
		}
		return SourceHTTP, source
	case "ipfs":
		c, err := cid.Decode(u.Host)
		if err != nil {
			return SourceUnknown, source
		}
		return SourceIPFS, "ipfs://" + c.String() + u.Path
	case "file":
		if u.Path == "" {
			return SourceUnknown, source
		}
		return SourceFile, u.Path
	case "":
		return SourceFile, source
	default:
		return SourceUnknown, source
	}
}

// Slug returns a filesystem-safe filename stem for the source. The stem is
// the readable file name followed by a short digest of the normalized
// source, so sources sharing a file name get distinct slugs.
func Slug(source string) string {
	st, normalized := Classify(source)
	switch st {
	case SourceHTTP:
		u, err := url.Parse(normalized)
		if err != nil {
			return hashSlug(normalized)
		}
		base := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return hashSlug(normalized)
		}
		return sanitize(base) + "-" + shortHash(normalized)
	case SourceIPFS:
		c, rest := ipfsParts(normalized)
		if rest == "" || rest == "/" {
			return "ipfs-" + c
		}
		return "ipfs-" + c + "-" + shortHash(normalized)
	case SourceFile:
		abs, err := filepath.Abs(normalized)
		if err != nil {
			abs = normalized
		}
		base := filepath.Base(abs)
		return sanitize(strings.TrimSuffix(base, filepath.Ext(base))) + "-" + shortHash(abs)
	default:
		return "unknown"
	}
}

// gatewayURL rewrites a normalized ipfs:// source onto an HTTP gateway.
func gatewayURL(gateway, normalized string) string {
	c, rest := ipfsParts(normalized)
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return gateway + c + rest
}

// ipfsParts splits a normalized ipfs:// source into CID and path.
func ipfsParts(normalized string) (c, rest string) {
	s := strings.TrimPrefix(normalized, "ipfs://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func hashSlug(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("url-%x", h[:8])
}

// shortHash is the first 4 bytes of the sha256 of s, in hex.
func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h[:4])
}

var slugReplacer = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")

func sanitize(s string) string {
	s = slugReplacer.Replace(s)
	if s == "" || s == "." || s == ".." {
		return "unknown"
	}
	return s
}
