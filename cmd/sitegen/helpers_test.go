package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the sitegen binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "sitegen"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/sitegen ./cmd/sitegen'", binaryPath)
	}

	return binaryPath
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func withoutEnv(keys ...string) []string {
	var env []string
	for _, e := range os.Environ() {
		drop := false
		for _, k := range keys {
			if len(e) > len(k) && e[:len(k)+1] == k+"=" {
				drop = true
				break
			}
		}
		if !drop {
			env = append(env, e)
		}
	}
	return env
}
