package site

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// sanitizeRoute cleans a request path into a rooted route without trailing slash.
func sanitizeRoute(input string) string {
	route := strings.TrimSpace(strings.ReplaceAll(input, "\\", "/"))
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	cleaned := path.Clean(route)
	if cleaned == "." || cleaned == "" {
		cleaned = "/"
	}
	return cleaned
}

// validateRoute rejects routes that cannot be written below the output directory.
func validateRoute(route string) error {
	if !strings.HasPrefix(route, "/") {
		return errors.Join(ErrInvalidPath, errors.New("route must be rooted"))
	}
	if strings.Contains(route, "\x00") {
		return errors.Join(ErrInvalidPath, errors.New("contains null byte"))
	}
	if sanitizeRoute(route) != route {
		return errors.Join(ErrInvalidPath, errors.New("route is not clean"))
	}
	return nil
}

// outputPathFor maps a route to its index.html below the output root.
func outputPathFor(route string) string {
	trimmed := strings.Trim(sanitizeRoute(route), "/")
	if trimmed == "" {
		return "index.html"
	}
	return filepath.ToSlash(path.Join(trimmed, "index.html"))
}
