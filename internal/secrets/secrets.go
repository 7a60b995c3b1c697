// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/govmeta/internal/logger"
)

// Known key files.
const (
	// BlockfrostProjectID is sent as the project_id header to IPFS gateways
	// that require it.
	BlockfrostProjectID = "blockfrost-project-id"

	// MetadataBearerToken is sent as a bearer token to HTTP metadata hosts.
	MetadataBearerToken = "metadata-bearer-token"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value for key, or "" if it is not set.
func (s Secrets) Get(key string) string {
	return s[key]
}

// Names returns the loaded key names in sorted order. Values are never
// listed.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string, log *logger.Logger) (Secrets, error) {
	if log == nil {
		log = logger.Discard()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
