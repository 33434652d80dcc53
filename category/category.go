// Package category resolves category route parameters and filters the post
// catalog by category tag and language.
package category

import (
	"sort"
	"strings"
	"time"

	"github.com/s0l0c0ding/solocoding/content"
)

const (
	// LanguageMarker prefixes category parameters that select Italian posts.
	LanguageMarker = content.LanguageItalian
	separator      = "_"
)

// Selection is the resolved state of a category dashboard.
type Selection struct {
	Keyword  string `json:"keyword,omitempty"`
	Language string `json:"language"`
}

// ParseParam resolves a category route parameter such as "devops", "it" or
// "it_angular" into a keyword and a language.
func ParseParam(param string) Selection {
	param = strings.TrimSpace(param)
	if param == "" {
		return Selection{Language: content.DefaultLanguage}
	}
	if param == LanguageMarker {
		return Selection{Keyword: LanguageMarker, Language: content.LanguageItalian}
	}
	if rest, ok := strings.CutPrefix(param, LanguageMarker+separator); ok {
		// only the segment right after the marker names the keyword
		keyword, _, _ := strings.Cut(rest, separator)
		if keyword == "" {
			return Selection{Keyword: LanguageMarker, Language: content.LanguageItalian}
		}
		return Selection{Keyword: keyword, Language: content.LanguageItalian}
	}
	return Selection{Keyword: param, Language: content.DefaultLanguage}
}

// Param is the inverse of ParseParam.
func (s Selection) Param() string {
	if s.Language == content.LanguageItalian {
		if s.Keyword == "" || s.Keyword == LanguageMarker {
			return LanguageMarker
		}
		return LanguageMarker + separator + s.Keyword
	}
	return s.Keyword
}

// Matches reports whether a record belongs to the selection. A keyword equal
// to the language marker selects every tagged post in that language.
func (s Selection) Matches(r content.Record) bool {
	keywordOK := s.Keyword == "" || s.Keyword == LanguageMarker || r.HasKeyword(s.Keyword)
	return keywordOK && r.HasKeywords() && r.Language == s.Language
}

// Filter returns the records matching the selection in their original order.
func Filter(records []content.Record, sel Selection) []content.Record {
	out := make([]content.Record, 0, len(records))
	for _, r := range records {
		if sel.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Tagged returns every record carrying at least one keyword, regardless of language.
func Tagged(records []content.Record) []content.Record {
	out := make([]content.Record, 0, len(records))
	for _, r := range records {
		if r.HasKeywords() {
			out = append(out, r)
		}
	}
	return out
}

// SortByDate orders records newest first in place. Records with an
// unparseable date go last; ties keep their input order.
func SortByDate(records []content.Record) {
	type dated struct {
		rec content.Record
		at  time.Time
		ok  bool
	}
	items := make([]dated, len(records))
	for i, r := range records {
		at, ok := r.PublishedAt()
		items[i] = dated{rec: r, at: at, ok: ok}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.ok && !b.ok:
			return true
		case !a.ok:
			return false
		}
		return a.at.After(b.at)
	})
	for i := range items {
		records[i] = items[i].rec
	}
}
