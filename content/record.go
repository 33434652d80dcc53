package content

import (
	"errors"
	"path"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Languages posts can be written in.
const (
	LanguageEnglish = "en"
	LanguageItalian = "it"
)

// DefaultLanguage applies to posts whose front matter carries no language.
const DefaultLanguage = LanguageEnglish

// KnownLanguages lists the languages the site publishes in.
var KnownLanguages = []string{LanguageEnglish, LanguageItalian}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Record is a single routable content item together with the metadata used
// for listings and social tags. It is produced by the content scan and read
// by everything else.
type Record struct {
	Route       string   `json:"route"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Photo       string   `json:"photo,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Language    string   `json:"language,omitempty"`
	Date        string   `json:"date,omitempty"`
	Published   *bool    `json:"published,omitempty"`
	TweetID     string   `json:"tweetId,omitempty"`
	Slug        string   `json:"slug,omitempty"`
	SourceFile  string   `json:"sourceFile,omitempty"`
}

// IsPublished reports whether the record is visible. A missing flag counts as published.
func (r Record) IsPublished() bool {
	return r.Published == nil || *r.Published
}

// HasKeywords reports whether the record carries at least one category tag.
func (r Record) HasKeywords() bool {
	return len(r.Keywords) > 0
}

// HasKeyword reports whether keyword is one of the record's tags.
func (r Record) HasKeyword(keyword string) bool {
	return slices.Contains(r.Keywords, keyword)
}

// PrimaryKeyword returns the first tag or an empty string.
func (r Record) PrimaryKeyword() string {
	if len(r.Keywords) == 0 {
		return ""
	}
	return r.Keywords[0]
}

// PublishedAt parses the date field. ok is false when the date is missing or
// in none of the accepted layouts.
func (r Record) PublishedAt() (t time.Time, ok bool) {
	return ParseDate(r.Date)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Keywords != nil {
		out.Keywords = append([]string(nil), r.Keywords...)
	}
	if r.Published != nil {
		published := *r.Published
		out.Published = &published
	}
	return out
}

// Validate checks the metadata a post needs to render correctly.
func (r Record) Validate() error {
	languages := make([]any, 0, len(KnownLanguages))
	for _, lang := range KnownLanguages {
		languages = append(languages, lang)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Route, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Language, validation.Required, validation.In(languages...)),
		validation.Field(&r.TweetID, is.Digit),
		validation.Field(&r.Photo, validation.By(relativeAsset)),
		validation.Field(&r.Date, validation.By(parseableDate)),
	)
}

// ParseDate parses a front matter date using the accepted layouts.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CloneAll deep-copies a slice of records.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func relativeAsset(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "/") {
		return errors.New("must be relative to the site root")
	}
	if cleaned := path.Clean(s); strings.HasPrefix(cleaned, "..") {
		return errors.New("must not escape the site root")
	}
	return nil
}

func parseableDate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := ParseDate(s); !ok {
		return errors.New("unrecognised date layout")
	}
	return nil
}
