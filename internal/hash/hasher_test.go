package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestHashFile_SmallFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := HashFile(testFile, MD5)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	sum := md5.Sum(content)
	expected := hex.EncodeToString(sum[:])

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_LargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "large.bin")

	// Create a 1MB file so the digest spans many buffer reads
	size := 1024 * 1024
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}

	if err := os.WriteFile(testFile, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := HashFile(testFile, SHA256)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	sum := sha256.Sum256(data)
	expected := hex.EncodeToString(sum[:])

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_XXHash(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	content := []byte("xxhash content")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := HashFile(testFile, XXHash)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	h := xxhash.New()
	h.Write(content)
	expected := hex.EncodeToString(h.Sum(nil))

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_NonExistent(t *testing.T) {
	_, err := HashFile("/nonexistent/file.txt", MD5)
	if err == nil {
		t.Error("HashFile should return error for nonexistent file")
	}
}

func TestHashFile_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "empty.txt")

	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	for _, alg := range Algorithms() {
		hash, err := HashFile(testFile, alg)
		if err != nil {
			t.Fatalf("HashFile(%s) failed: %v", alg, err)
		}

		// Empty file should still produce a valid digest
		if hash == "" {
			t.Errorf("%s: hash should not be empty string", alg)
		}
	}
}

func TestAlgorithm_DigestLengths(t *testing.T) {
	expected := map[Algorithm]int{
		MD5:     32,
		SHA1:    40,
		SHA256:  64,
		Adler32: 8,
		CRC32:   8,
		XXHash:  16,
	}

	for alg, want := range expected {
		got := hex.EncodeToString(alg.New().Sum(nil))
		if len(got) != want {
			t.Errorf("%s: expected %d hex chars, got %d", alg, want, len(got))
		}
	}
}

func TestAlgorithm_NewUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown algorithm")
		}
	}()
	Algorithm("whirlpool").New()
}

func TestAlgorithm_ZeroValueIsDefault(t *testing.T) {
	got := hex.EncodeToString(Algorithm("").New().Sum(nil))
	want := hex.EncodeToString(DefaultAlgorithm.New().Sum(nil))
	if got != want {
		t.Errorf("expected zero value to digest like %s", DefaultAlgorithm)
	}
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("")
	if err != nil || alg != DefaultAlgorithm {
		t.Errorf("empty name: expected %s, got %s (err %v)", DefaultAlgorithm, alg, err)
	}

	alg, err = ParseAlgorithm(" SHA256 ")
	if err != nil || alg != SHA256 {
		t.Errorf("expected sha256, got %s (err %v)", alg, err)
	}

	_, err = ParseAlgorithm("whirlpool")
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestXXHashFunc(t *testing.T) {
	data := []byte("test data")

	hashBytes, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed: %v", err)
	}

	if len(hashBytes) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(hashBytes))
	}

	hashBytes2, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed on second call: %v", err)
	}

	if hex.EncodeToString(hashBytes) != hex.EncodeToString(hashBytes2) {
		t.Error("XXHashFunc should be deterministic")
	}
}
