package layout

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/perimeter/pkg/errors"
)

// Load opens a scene by extension: .toml files are scenes, .html/.htm files
// are documents. The returned Scene carries the cursor script; it is empty
// for HTML documents.
func Load(path string) (*Static, *Scene, error) {
	if err := errors.ValidateSceneFilename(path); err != nil {
		return nil, nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		sc, err := LoadScene(path)
		if err != nil {
			return nil, nil, err
		}
		return sc.Source(), sc, nil
	default:
		src, err := LoadHTML(path, DefaultHTMLOptions)
		if err != nil {
			return nil, nil, err
		}
		return src, &Scene{}, nil
	}
}
