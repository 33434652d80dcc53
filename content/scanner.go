package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
)

// ErrNoContent is returned when the content folder holds no markdown files.
var ErrNoContent = errors.New("no markdown content found")

// frontMatter is the typed envelope decoded from a post header.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Photo       string   `yaml:"photo"`
	Keywords    keywordList `yaml:"keywords"`
	Language    string      `yaml:"language"`
	Date        string      `yaml:"date"`
	Published   *bool       `yaml:"published"`
	TweetID     string      `yaml:"tweetId"`
	Slug        string      `yaml:"slug"`
}

// keywordList accepts a YAML sequence or a single, possibly comma separated,
// scalar.
type keywordList []string

func (k *keywordList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*k = list
		return nil
	}
	var single string
	if err := unmarshal(&single); err != nil {
		return err
	}
	*k = strings.Split(single, ",")
	return nil
}

// Scanner discovers markdown posts in a folder and turns their front matter
// into route records.
type Scanner struct {
	dir     string
	pattern string
	logger  *slog.Logger
}

// NewScanner builds a scanner for dir whose records are routed through pattern
// (for example "/blog/:slug").
func NewScanner(dir, pattern string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{dir: dir, pattern: pattern, logger: logger}
}

// Dir returns the scanned folder.
func (s *Scanner) Dir() string {
	return s.dir
}

// Scan walks the folder and returns one record per markdown file, sorted by
// route. Metadata problems are logged and never abort the scan.
func (s *Scanner) Scan(ctx context.Context) ([]Record, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("content folder %s: %w", s.dir, err)
	}

	records := make([]Record, 0, 32)
	seen := make(map[string]string)
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		rec, err := s.load(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if prev, dup := seen[rec.Route]; dup {
			s.logger.Warn("scan", "file", rec.SourceFile, "route", rec.Route, "error", "duplicate route, already provided by "+prev)
			return nil
		}
		seen[rec.Route] = rec.SourceFile
		if err := rec.Validate(); err != nil {
			s.logger.Warn("scan", "file", rec.SourceFile, "error", err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.dir, err)
	}
	if len(records) == 0 {
		return nil, ErrNoContent
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Route < records[j].Route })
	return records, nil
}

// Read returns the raw markdown source of a scanned record.
func (s *Scanner) Read(rec Record) ([]byte, error) {
	if rec.SourceFile == "" {
		return nil, fmt.Errorf("record %s has no source file", rec.Route)
	}
	full := filepath.Join(s.dir, filepath.FromSlash(rec.SourceFile))
	return os.ReadFile(full)
}

func (s *Scanner) load(full, rel string) (Record, error) {
	data, err := os.ReadFile(full)
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", rel, err)
	}

	// A header that does not decode keeps whatever fields did decode, but
	// the post stays off the site until it is fixed.
	var meta frontMatter
	if _, err := frontmatter.Parse(bytes.NewReader(data), &meta); err != nil {
		s.logger.Warn("scan", "file", rel, "error", fmt.Errorf("front matter: %w", err), "published", false)
		unpublished := false
		meta.Published = &unpublished
	}

	name := meta.Slug
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}
	postSlug := slugFor(name)

	rec := Record{
		Title:       strings.TrimSpace(meta.Title),
		Description: strings.TrimSpace(meta.Description),
		Photo:       strings.TrimSpace(meta.Photo),
		Keywords:    normalizeKeywords(meta.Keywords),
		Language:    strings.ToLower(strings.TrimSpace(meta.Language)),
		Date:        strings.TrimSpace(meta.Date),
		Published:   meta.Published,
		TweetID:     strings.TrimSpace(meta.TweetID),
		Slug:        postSlug,
		SourceFile:  rel,
	}
	if rec.Language == "" {
		rec.Language = DefaultLanguage
	}
	rec.Route = ExpandPattern(s.pattern, postSlug)
	return rec, nil
}

// ExpandPattern substitutes the last ":param" segment of pattern with value.
func ExpandPattern(pattern, value string) string {
	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if strings.HasPrefix(segments[i], ":") {
			segments[i] = value
			return "/" + strings.Join(segments, "/")
		}
	}
	return "/" + strings.Join(append(segments, value), "/")
}

func slugFor(name string) string {
	if normalized, err := slug.Normalize(name); err == nil && normalized != "" {
		return normalized
	}
	fallback := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	if fallback == "" {
		return "untitled"
	}
	return fallback
}

func normalizeKeywords(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
