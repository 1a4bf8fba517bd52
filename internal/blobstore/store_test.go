package blobstore

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
)

func newTestStore(t *testing.T, maxBytes int64) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080", maxBytes, []string{".bin", ".hex"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestDiskStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, 1024)
	payload := []byte("ecu firmware dump")

	ref, err := store.Store("dump.bin", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if ref.Size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), ref.Size)
	}
	if !strings.HasSuffix(ref.Name, ".bin") {
		t.Fatalf("expected stored name to keep extension, got %q", ref.Name)
	}
	if ref.URL != "http://localhost:8080/api/files/"+ref.Name {
		t.Fatalf("unexpected url %q", ref.URL)
	}

	rc, err := store.Open(ref.Name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("artifact corrupted: %q", got)
	}
}

func TestDiskStoreUniqueNames(t *testing.T) {
	store := newTestStore(t, 1024)

	first, err := store.Store("dump.bin", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	second, err := store.Store("dump.bin", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if first.Name == second.Name {
		t.Fatalf("expected unique stored names, got %q twice", first.Name)
	}
}

func TestDiskStoreRejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t, 1024)

	_, err := store.Store("malware.exe", strings.NewReader("nope"))
	if !errors.Is(err, domainErrors.ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
}

func TestDiskStoreRejectsTooLarge(t *testing.T) {
	store := newTestStore(t, 8)

	_, err := store.Store("dump.bin", strings.NewReader("123456789"))
	if !errors.Is(err, domainErrors.ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}

	if _, err := store.Store("dump.bin", strings.NewReader("12345678")); err != nil {
		t.Fatalf("payload at the limit should be accepted, got %v", err)
	}
}

func TestDiskStoreOpenMissing(t *testing.T) {
	store := newTestStore(t, 1024)

	if _, err := store.Open("nope.bin"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Open("../escape.bin"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for path traversal, got %v", err)
	}
}
