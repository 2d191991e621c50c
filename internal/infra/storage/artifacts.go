package storage

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

// Store is the filesystem bookkeeping around stage outputs. It satisfies
// usecase.ArtifactStore.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// List returns the PDFs in a directory, newest metadata included, with
// download URLs under the given prefix.
func (s *Store) List(dir, urlPrefix string) ([]entity.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []entity.Artifact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	artifacts := []entity.Artifact{}
	for _, e := range entries {
		if e.IsDir() || !isPDF(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, entity.Artifact{
			Name:        e.Name(),
			DownloadURL: urlPrefix + "/" + e.Name(),
			SizeKB:      int64(math.Round(float64(info.Size()) / 1024)),
			Modified:    info.ModTime(),
		})
	}
	return artifacts, nil
}

func (s *Store) CountPDFs(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counting PDFs in %s: %w", dir, err)
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && isPDF(e.Name()) {
			count++
		}
	}
	return count, nil
}

// Clear removes every file in the directory but keeps the directory itself.
// A missing directory is created instead.
func (s *Store) Clear(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clearing %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// EnsureDirs creates every directory a pipeline writes to.
func (s *Store) EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// StreamZip writes every PDF in the directory into a zip archive on w.
// Callers must have sent headers already; mid-stream failures can only
// truncate the download.
func (s *Store) StreamZip(w io.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		if e.IsDir() || !isPDF(e.Name()) {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			zw.Close()
			return fmt.Errorf("opening %s: %w", e.Name(), err)
		}
		entry, err := zw.Create(e.Name())
		if err == nil {
			_, err = io.Copy(entry, f)
		}
		f.Close()
		if err != nil {
			zw.Close()
			return fmt.Errorf("archiving %s: %w", e.Name(), err)
		}
	}
	return zw.Close()
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
