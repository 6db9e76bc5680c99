// filestore.go
//
// Schema-driven form validation and submission service for jam-build
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-formsdb.
// jam-build-formsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-formsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-formsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package filestore keeps submitted files on local disk under a single root.
// Every write goes to a temp file, is hashed while streaming, synced and then
// linked into place, so a stored path never names a partial file.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for storage paths that would leave the root.
var ErrInvalidPath = errors.New("invalid storage path")

// Store manages files below root.
type Store struct {
	root string
}

// SaveResult describes a stored file.
type SaveResult struct {
	// StoragePath is relative to the root, slash separated
	StoragePath string
	FullPath    string
	Size        int64
	// Checksum is the hex sha256 of the content
	Checksum string
}

// New creates the root directory if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// maxPlaceAttempts bounds the suffixed names tried when a path is taken.
const maxPlaceAttempts = 4

// Save streams r to storagePath. When a file already exists there, a short
// uuid is appended to the base name; the returned StoragePath is the one used.
// An existing file is never replaced.
func (s *Store) Save(r io.Reader, storagePath string) (*SaveResult, error) {
	clean, err := cleanPath(storagePath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(s.FullPath(clean))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", clean, err)
	}

	f, err := os.CreateTemp(dir, ".upload-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(r, hasher))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s: %w", clean, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to sync %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", clean, err)
	}

	stored, err := s.place(tmpPath, clean)
	if err != nil {
		return nil, err
	}

	return &SaveResult{
		StoragePath: stored,
		FullPath:    s.FullPath(stored),
		Size:        size,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// place hard-links the finished temp file at storagePath, or at a suffixed
// name when that is taken. os.Link refuses an existing target.
func (s *Store) place(tmpPath, storagePath string) (string, error) {
	target := storagePath
	for attempt := 1; ; attempt++ {
		err := os.Link(tmpPath, s.FullPath(target))
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt == maxPlaceAttempts {
			return "", fmt.Errorf("failed to move %s into place: %w", storagePath, err)
		}
		target = withSuffix(storagePath, uuid.New().String()[:8])
	}
}

// Open opens a stored file for reading. The caller closes it.
func (s *Store) Open(storagePath string) (*os.File, error) {
	clean, err := cleanPath(storagePath)
	if err != nil {
		return nil, err
	}
	return os.Open(s.FullPath(clean))
}

// Delete removes a stored file. A missing file is not an error.
func (s *Store) Delete(storagePath string) error {
	clean, err := cleanPath(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(s.FullPath(clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", clean, err)
	}
	return nil
}

func (s *Store) Exists(storagePath string) bool {
	_, err := os.Stat(s.FullPath(storagePath))
	return err == nil
}

// FullPath maps a storage path onto the local filesystem.
func (s *Store) FullPath(storagePath string) string {
	return filepath.Join(s.root, filepath.FromSlash(storagePath))
}

func (s *Store) Root() string {
	return s.root
}

func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	clean := path.Clean(p)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

// withSuffix turns dir/name.ext into dir/name_suffix.ext.
func withSuffix(p, suffix string) string {
	dir, file := path.Split(p)
	ext := path.Ext(file)
	return dir + strings.TrimSuffix(file, ext) + "_" + suffix + ext
}
