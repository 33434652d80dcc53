package site

import "errors"

var (
	// ErrInvalidPath is returned when a request or route path fails validation.
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnknownRouteType signals a configured route whose type has no router plugin.
	ErrUnknownRouteType = errors.New("unknown route type")
	// ErrNoContentFolder is returned when a post is rendered without a contentFolder route.
	ErrNoContentFolder = errors.New("no contentFolder route configured")
)
