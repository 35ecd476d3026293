package sources

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// RawStore keeps a copy of every input file under its content hash, so a
// stored run can always be traced back to the exact bytes it read.
type RawStore struct {
	dir string
}

func NewRawStore(dir string) *RawStore {
	return &RawStore{dir: dir}
}

// Keep writes f once and returns its path. The same content is never written
// twice.
func (s *RawStore) Keep(f File) (string, error) {
	hashBytes := sha256.Sum256(f.Content)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	rawPath := filepath.Join(s.dir, hash+strings.ToLower(filepath.Ext(f.Name)))
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, f.Content, 0o644); err != nil {
			return "", err
		}
	}
	return rawPath, nil
}
