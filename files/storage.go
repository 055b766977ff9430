// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package files stores uploaded file content on local disk and hands out
// opaque FileRef handles. The core never interprets a ref beyond passing it
// back here for release.
package files

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multitechword/taskhub"
)

// URLPrefix is the public path prefix under which stored files are served.
const URLPrefix = "/uploads"

// Storage writes uploads into a single directory and serves them by ref.
type Storage struct {
	dir    string
	logger *zap.Logger
}

// NewStorage creates the upload directory if needed and returns a storage
// rooted there.
func NewStorage(dir string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// Dir returns the directory backing the storage, for static file serving.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes one upload to disk and returns its ref. The stored name is
// prefixed with a random ID so colliding client filenames never overwrite
// each other.
func (s *Storage) Save(filename string, r io.Reader) (taskhub.FileRef, error) {
	stored := uuid.NewString() + "_" + sanitize(filename)

	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return taskhub.FileRef{}, taskhub.NewStorageError("file save", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return taskhub.FileRef{}, taskhub.NewStorageError("file save", err)
	}

	return taskhub.FileRef{
		Filename:   filename,
		Path:       path.Join(URLPrefix, stored),
		UploadDate: time.Now(),
	}, nil
}

// Release deletes the content behind each ref, best-effort: a failure on one
// file is logged and does not stop the rest.
func (s *Storage) Release(refs []taskhub.FileRef) {
	for _, ref := range refs {
		stored := path.Base(ref.Path)
		if stored == "." || stored == "/" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, stored)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to release file",
				zap.String("filename", ref.Filename),
				zap.String("path", ref.Path),
				zap.Error(err),
			)
		}
	}
}

// sanitize strips path separators and control characters from a client
// supplied filename.
func sanitize(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == '\\':
			return '_'
		default:
			return r
		}
	}, filename)
	if filename == "" || filename == "." {
		return "file"
	}
	return filename
}
