package plugins

import "strings"

// HeadMarker is the closing tag head injections are spliced in front of.
const HeadMarker = "</head>"

// insertBefore splices fragment in front of the first occurrence of marker.
// ok is false and doc is returned unchanged when the marker is missing.
func insertBefore(doc, marker, fragment string) (string, bool) {
	idx := strings.Index(doc, marker)
	if idx < 0 {
		return doc, false
	}
	var b strings.Builder
	b.Grow(len(doc) + len(fragment))
	b.WriteString(doc[:idx])
	b.WriteString(fragment)
	b.WriteString(doc[idx:])
	return b.String(), true
}
