package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMediaFixture creates path with size bytes of deterministic filler so
// tests can stand in for media files without shipping real ones. Parent
// directories are created as needed; a size <= 0 writes a single byte.
func WriteMediaFixture(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
