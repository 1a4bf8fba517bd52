package blobstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
)

// Store keeps binary artifacts and hands out stable references.
type Store interface {
	Store(filename string, r io.Reader) (model.FileRef, error)
	Open(storedName string) (io.ReadCloser, error)
}

// DiskStore keeps artifacts on the local filesystem. Writes go to a
// temporary file first and are published with a rename, so a crash leaves
// either the whole artifact or nothing.
type DiskStore struct {
	dir        string
	baseURL    string
	maxBytes   int64
	extensions map[string]struct{}
}

// NewDiskStore creates the upload directory if missing.
func NewDiskStore(dir, baseURL string, maxBytes int64, allowedExtensions []string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &DiskStore{
		dir:        dir,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxBytes:   maxBytes,
		extensions: exts,
	}, nil
}

// Store persists the stream under a unique name derived from filename.
func (s *DiskStore) Store(filename string, r io.Reader) (model.FileRef, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(s.extensions) > 0 {
		if _, ok := s.extensions[ext]; !ok {
			return model.FileRef{}, fmt.Errorf("%q: %w", ext, domainErrors.ErrUnsupportedType)
		}
	}

	storedName := uniqueName(ext)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return model.FileRef{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	// Read one byte past the limit to tell "at limit" from "over it".
	size, err := io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return model.FileRef{}, fmt.Errorf("write artifact: %w", err)
	}
	if size > s.maxBytes {
		return model.FileRef{}, domainErrors.ErrTooLarge
	}
	if err := tmp.Close(); err != nil {
		return model.FileRef{}, fmt.Errorf("close artifact: %w", err)
	}

	target := filepath.Join(s.dir, storedName)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return model.FileRef{}, fmt.Errorf("publish artifact: %w", err)
	}

	return model.FileRef{
		Name: storedName,
		URL:  s.baseURL + "/api/files/" + storedName,
		Size: size,
	}, nil
}

// Open returns the artifact stream for a stored name.
func (s *DiskStore) Open(storedName string) (io.ReadCloser, error) {
	// Stored names are generated by this package; reject anything that
	// could escape the directory.
	if storedName == "" || storedName != filepath.Base(storedName) {
		return nil, domainErrors.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func uniqueName(ext string) string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf) + ext
}
