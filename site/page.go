package site

import (
	"html/template"

	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/templatex"
)

// post is a rendered markdown post ready to be placed into the post template.
type post struct {
	Record    content.Record
	HTML      template.HTML
	Sections  []templatex.TOCEntry
	Summary   string
	PlainText string
}

// output is a finished page of the static build.
type output struct {
	Route string
	Path  string
	HTML  []byte
	// Post is set for markdown routes.
	Post *post
}
