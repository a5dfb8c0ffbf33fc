package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSecret_Inline(t *testing.T) {
	b, err := LoadSecret("inline-secret-value")
	if err != nil {
		t.Fatalf("LoadSecret: %v", err)
	}
	if string(b) != "inline-secret-value" {
		t.Errorf("LoadSecret = %q", b)
	}
}

func TestLoadSecret_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("file-secret\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := LoadSecret(path)
	if err != nil {
		t.Fatalf("LoadSecret: %v", err)
	}
	if string(b) != "file-secret" {
		t.Errorf("LoadSecret = %q, want trimmed file content", b)
	}
}

func TestLoadSecret_Empty(t *testing.T) {
	if _, err := LoadSecret("  "); err != ErrInvalidSecret {
		t.Errorf("LoadSecret empty: want ErrInvalidSecret, got %v", err)
	}
}
