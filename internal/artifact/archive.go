package artifact

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cameronsjo/keylimegen/internal/fileutil"
)

// DefaultArchiveName is the archive file name within the output root.
const DefaultArchiveName = "keylime-manifests.zip"

// epoch is the modification time stamped on every entry. It is the
// earliest time the zip format can represent.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry describes one archive member.
type Entry struct {
	Name  string
	Size  uint64
	CRC32 uint32
}

// Package writes a zip archive at archivePath holding each file in paths,
// in order, under its base name. Identical inputs give byte-identical
// archives. On failure no archive is left at archivePath.
func Package(archivePath string, paths []string) (string, error) {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if prev, ok := seen[name]; ok {
			os.Remove(archivePath)
			return "", fmt.Errorf("%w: duplicate entry %s (%s and %s)", ErrIO, name, prev, p)
		}
		seen[name] = p
	}

	err := fileutil.WriteAtomic(archivePath, FilePerm, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, p := range paths {
			if err := addFile(zw, p); err != nil {
				return err
			}
		}
		return zw.Close()
	})
	if err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("%w: package %s: %w", ErrIO, archivePath, err)
	}

	return archivePath, nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := &zip.FileHeader{
		Name:     filepath.Base(path),
		Method:   zip.Deflate,
		Modified: epoch,
	}
	header.SetMode(FilePerm)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", header.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// List returns the entries of the archive in stored order.
func List(archivePath string) ([]Entry, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", ErrIO, archivePath, err)
	}
	defer zr.Close()

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, Entry{
			Name:  f.Name,
			Size:  f.UncompressedSize64,
			CRC32: f.CRC32,
		})
	}
	return entries, nil
}

// Extract unpacks a flat archive into dir and returns the written paths in
// archive order.
func Extract(archivePath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", ErrIO, archivePath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return nil, fmt.Errorf("%w: create directory %s: %w", ErrIO, dir, err)
	}

	paths := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if err := ValidateName(f.Name); err != nil {
			return paths, err
		}

		path := filepath.Join(dir, f.Name)
		err := fileutil.WriteAtomic(path, FilePerm, func(w io.Writer) error {
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(w, rc)
			return err
		})
		if err != nil {
			return paths, fmt.Errorf("%w: extract %s: %w", ErrIO, path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
