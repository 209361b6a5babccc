package fsutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	if err := WriteFileAtomic(path, []byte("first"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, []byte("second")) {
		t.Errorf("expected %q, got %q", "second", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.bin")
	if err := WriteFileAtomic(path, []byte("x"), 0644); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file at %s, got %v", path, err)
	}
}

func TestWriteFileAtomic_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	// Make the rename fail with a non-empty directory in the way.
	if err := os.WriteFile(filepath.Join(target, "keep"), nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := WriteFileAtomic(target, []byte("x"), 0644); err == nil {
		t.Fatal("expected error when target is a directory")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "taken" {
			t.Errorf("temporary file %s was left behind", e.Name())
		}
	}
}

func TestWriteFileAtomic_Concurrent(t *testing.T) {
	dir := t.TempDir()
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = WriteFileAtomic(filepath.Join(dir, "shared.bin"), bytes.Repeat([]byte{byte(i)}, 1024), 0644)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("writer %d failed: %v", i, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "shared.bin"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != 1024 || !bytes.Equal(data, bytes.Repeat(data[:1], 1024)) {
		t.Error("expected the file to hold exactly one writer's data")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected directory at %s", dir)
	}
}
