package renderer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/text/unicode/norm"
)

// outline anchors every heading, collects the table of contents within the
// configured levels and extracts the plain text used for summaries and search.
func (r *Renderer) outline(root ast.Node, src []byte) ([]Heading, string) {
	var (
		toc   []Heading
		plain strings.Builder
	)
	used := make(map[string]int)

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			id := claimAnchor(node, title, used)
			if node.Level >= r.opts.TOCMinLevel && node.Level <= r.opts.TOCMaxLevel {
				toc = append(toc, Heading{ID: id, Text: title, Level: node.Level})
			}
		case *ast.Text:
			plain.Write(node.Segment.Value(src))
			plain.WriteByte(' ')
		case *ast.String:
			plain.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return toc, strings.Join(strings.Fields(plain.String()), " ")
}

// claimAnchor keeps an explicit {#id} and otherwise derives one from the
// heading text, suffixing repeats with -1, -2 and so on.
func claimAnchor(node *ast.Heading, title string, used map[string]int) string {
	if raw, ok := node.AttributeString("id"); ok {
		var id string
		switch v := raw.(type) {
		case []byte:
			id = string(v)
		case string:
			id = v
		}
		if id != "" {
			used[id]++
			return id
		}
	}
	base := anchorFor(title)
	id := base
	if n := used[base]; n > 0 {
		id = base + "-" + strconv.Itoa(n)
	}
	used[base]++
	node.SetAttributeString("id", []byte(id))
	return id
}

func inlineText(root ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n == root {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(src))
			if node.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// anchorFor folds accents ("Perché" becomes "perche") and joins the
// remaining letters and digits with dashes.
func anchorFor(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			dash = false
			sb.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
	}
	if sb.Len() == 0 {
		return "section"
	}
	return sb.String()
}
