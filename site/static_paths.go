package site

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// StaticDocumentPath resolves the on-disk file corresponding to a request path.
// Paths with an extension map to the file itself, everything else to the
// index.html of the route directory.
func (s *Service) StaticDocumentPath(requestPath string) (string, error) {
	if strings.Contains(requestPath, "\x00") {
		return "", errors.Join(ErrInvalidPath, errors.New("contains null byte"))
	}
	route := sanitizeRoute(requestPath)
	rel := outputPathFor(route)
	if ext := path.Ext(route); ext != "" {
		rel = strings.TrimPrefix(route, "/")
	}

	root := filepath.Clean(s.cfg.OutputDir)
	full := filepath.Join(root, filepath.FromSlash(rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", errors.Join(ErrInvalidPath, errors.New("path escapes output root"))
	}
	return full, nil
}

// NotFoundDocumentPath returns the static 404 page path.
func (s *Service) NotFoundDocumentPath() string {
	return filepath.Join(s.cfg.OutputDir, "404.html")
}

// OutputDir returns the directory the static build is written to.
func (s *Service) OutputDir() string {
	return s.cfg.OutputDir
}
