// Package walker discovers the SVG documents and path data files under a
// directory tree.
package walker

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// DefaultMaxFileSize is the largest file Walk returns unless told otherwise.
const DefaultMaxFileSize int64 = 4 << 20

// sniffSize is how much of a file is read to confirm its kind.
const sniffSize = 4096

// FileInfo describes one file to fit.
type FileInfo struct {
	Path    string // absolute
	RelPath string // slash-separated, relative to the walk root
	Size    int64
	Kind    Kind
}

// Options controls Walk.
type Options struct {
	Root        string
	Include     []string // doublestar patterns; empty includes every known kind
	Exclude     []string
	MaxFileSize int64 // 0 uses DefaultMaxFileSize
}

// Walk returns every SVG document and path data file under opts.Root that
// passes the include and exclude patterns and the root .gitignore. Hidden and
// dependency directories are not entered. Files whose content does not look
// like their extension claims are skipped. A missing root yields no files.
func Walk(opts Options) ([]FileInfo, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	filter, err := NewFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	ignored := loadIgnoreFile(filepath.Join(root, ".gitignore"))

	var files []FileInfo
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDir(d.Name()) || ignored.match(rel, true) || filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		kind := DetectKind(d.Name())
		if kind == "" || ignored.match(rel, false) || !filter.Match(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}
		if !sniff(path, kind) {
			return nil
		}

		files = append(files, FileInfo{
			Path:    path,
			RelPath: rel,
			Size:    info.Size(),
			Kind:    kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return files, nil
}

// sniff reports whether the head of the file matches kind. Binary content
// such as a gzipped .svg never matches.
func sniff(path string, kind Kind) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	head = head[:n]
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}

	switch kind {
	case KindSVG:
		return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
	case KindPathData:
		trimmed := bytes.TrimSpace(head)
		if len(trimmed) == 0 {
			return false
		}
		_, ok := pathdata.Arity(trimmed[0])
		return ok
	}
	return false
}
