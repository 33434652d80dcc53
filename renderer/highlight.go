package renderer

import (
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/util"
)

// ChromaClassPrefix prefixes every highlighting class. The theme styles
// code blocks through ".z-chroma".
const ChromaClassPrefix = "z-"

func highlighter() goldmark.Extender {
	return highlighting.NewHighlighting(
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true),
			chromahtml.WithAllClasses(true),
			chromahtml.ClassPrefix(ChromaClassPrefix),
			chromahtml.PreventSurroundingPre(true),
		),
		highlighting.WithWrapperRenderer(wrapCodeBlock),
	)
}

// wrapCodeBlock emits the pre/code pair around highlighted code, tagged with
// the fence language ("text" when none is given).
func wrapCodeBlock(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	lang := "text"
	if raw, ok := ctx.Language(); ok && len(raw) > 0 {
		lang = string(util.EscapeHTML(raw))
	}
	_, _ = fmt.Fprintf(w, `<pre tabindex="0" class="%[1]schroma %[1]scode language-%[2]s" data-lang="%[2]s"><code class="language-%[2]s">`, ChromaClassPrefix, lang)
}
