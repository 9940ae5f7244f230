package tdworkflow

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// writeProjectArchive writes dir as a gzip-compressed tar stream to w.
// Entries are stored relative to dir. Dot files and dot directories
// (".git", ".digdag") are skipped, as are entries matching exclude.
func writeProjectArchive(w io.Writer, dir string, exclude []string) error {
	for _, pattern := range exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			return invalid("CreateProject", "ExcludePatterns", "bad pattern %q: %v", pattern, err)
		}
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(d.Name(), ".") || excluded(rel, d.Name(), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return addArchiveEntry(tw, p, rel, d)
	})
	if err != nil {
		return fmt.Errorf("tdworkflow: archive %s: %w", dir, err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("tdworkflow: archive %s: %w", dir, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("tdworkflow: archive %s: %w", dir, err)
	}
	return nil
}

func excluded(rel, base string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func addArchiveEntry(tw *tar.Writer, fullPath, rel string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	// Symlinks and other special files are not part of a project.
	if !info.Mode().IsRegular() && !info.IsDir() {
		return nil
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = rel
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
