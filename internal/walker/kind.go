package walker

import (
	"path/filepath"
	"strings"
)

// Kind classifies a discovered file by how it is rescaled.
type Kind string

const (
	// KindSVG is a full SVG document, fitted through its root viewBox.
	KindSVG Kind = "svg"
	// KindPathData is a text file holding bare path data.
	KindPathData Kind = "path"
)

// extensionToKind maps file extensions to kinds.
var extensionToKind = map[string]Kind{
	".svg":  KindSVG,
	".path": KindPathData,
	".d":    KindPathData,
}

// DetectKind returns the kind of the given filename based on its extension,
// or "" if pathfit does not handle it.
func DetectKind(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return extensionToKind[ext]
}
