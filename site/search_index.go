package site

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	searchIndexVersion = 4
	maxPositionsPerDoc = 48
)

const (
	fieldTitle = iota
	fieldSummary
	fieldKeywords
	fieldContent
	fieldCount
)

var (
	searchIndexFields    = []string{"title", "summary", "keywords", "content"}
	emptySearchIndexJSON = json.RawMessage(`{"v":4,"c":0,"f":["title","summary","keywords","content"],"a":[0,0,0,0],"d":[],"t":{}}`)
)

type termEntry struct {
	DocID     int
	Freq      [fieldCount]int
	Positions []int
}

// buildSearchIndex serializes a compact inverted index over the posts. Each
// doc row is [route, title, summary, language, lengths]; each term maps to
// "count|doc:f0:f1:f2:f3[:positions];..." in base 36.
func buildSearchIndex(posts []post) (json.RawMessage, error) {
	if len(posts) == 0 {
		return append(json.RawMessage(nil), emptySearchIndexJSON...), nil
	}

	docs := make([][]string, 0, len(posts))
	termMap := make(map[string][]*termEntry, len(posts)*16)
	var sumLengths [fieldCount]int

	for docID, p := range posts {
		docTerms := make(map[string]*termEntry, 64)
		entryFor := func(token string) *termEntry {
			entry := docTerms[token]
			if entry == nil {
				entry = &termEntry{DocID: docID}
				docTerms[token] = entry
			}
			return entry
		}

		var lengths [fieldCount]int
		lengths[fieldTitle] = processField(p.Record.Title, func(token string) {
			entryFor(token).Freq[fieldTitle]++
		})
		lengths[fieldSummary] = processField(p.Summary, func(token string) {
			entryFor(token).Freq[fieldSummary]++
		})
		lengths[fieldKeywords] = processField(strings.Join(p.Record.Keywords, " "), func(token string) {
			entryFor(token).Freq[fieldKeywords]++
		})
		contentPos := 0
		lengths[fieldContent] = processField(p.PlainText, func(token string) {
			entry := entryFor(token)
			entry.Freq[fieldContent]++
			if len(entry.Positions) < maxPositionsPerDoc {
				entry.Positions = append(entry.Positions, contentPos)
			}
			contentPos++
		})

		for i := range lengths {
			sumLengths[i] += lengths[i]
		}
		docs = append(docs, []string{p.Record.Route, p.Record.Title, p.Summary, p.Record.Language, encodeLengths(lengths)})

		for term, entry := range docTerms {
			termMap[term] = append(termMap[term], entry)
		}
	}

	termKeys := make([]string, 0, len(termMap))
	for term := range termMap {
		termKeys = append(termKeys, term)
	}
	sort.Strings(termKeys)

	termStrings := make(map[string]string, len(termMap))
	for _, term := range termKeys {
		entries := termMap[term]
		sort.Slice(entries, func(i, j int) bool { return entries[i].DocID < entries[j].DocID })
		termStrings[term] = encodeTermEntries(entries)
	}

	avgLengths := make([]int, fieldCount)
	for i := range sumLengths {
		avgLengths[i] = int(math.Round(float64(sumLengths[i]*100) / float64(len(posts))))
	}

	payload := struct {
		Version         int               `json:"v"`
		DocCount        int               `json:"c"`
		Fields          []string          `json:"f"`
		AvgFieldLengths []int             `json:"a"`
		Docs            [][]string        `json:"d"`
		Terms           map[string]string `json:"t"`
	}{
		Version:         searchIndexVersion,
		DocCount:        len(posts),
		Fields:          append([]string(nil), searchIndexFields...),
		AvgFieldLengths: avgLengths,
		Docs:            docs,
		Terms:           termStrings,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// processField tokenizes text after NFKD folding and calls apply per token.
// It returns the number of indexed tokens.
func processField(text string, apply func(string)) int {
	if text == "" {
		return 0
	}
	var builder strings.Builder
	count := 0
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		token := builder.String()
		builder.Reset()
		if shouldIndexToken(token) {
			apply(token)
			count++
		}
	}
	for _, r := range norm.NFKD.String(text) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return count
}

func shouldIndexToken(token string) bool {
	if token == "" {
		return false
	}
	if len(token) == 1 {
		b := token[0]
		if b < '0' || b > '9' {
			return false
		}
	}
	return true
}

func encodeTermEntries(entries []*termEntry) string {
	var builder strings.Builder
	builder.Grow(len(entries) * 14)
	builder.WriteString(encodeInt(len(entries)))
	builder.WriteByte('|')
	for i, entry := range entries {
		if i > 0 {
			builder.WriteByte(';')
		}
		builder.WriteString(encodeInt(entry.DocID))
		for _, freq := range entry.Freq {
			builder.WriteByte(':')
			builder.WriteString(encodeInt(freq))
		}
		if len(entry.Positions) > 0 {
			builder.WriteByte(':')
			builder.WriteString(encodePositions(entry.Positions))
		}
	}
	return builder.String()
}

func encodeLengths(lengths [fieldCount]int) string {
	parts := make([]string, len(lengths))
	for i, l := range lengths {
		parts[i] = encodeInt(l)
	}
	return strings.Join(parts, ",")
}

func encodeInt(value int) string {
	if value == 0 {
		return "0"
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	buf := make([]byte, 0, 8)
	for value > 0 {
		buf = append(buf, digits[value%36])
		value /= 36
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// encodePositions delta-encodes ascending positions joined by dots.
func encodePositions(positions []int) string {
	var builder strings.Builder
	prev := 0
	for i, pos := range positions {
		if i > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(encodeInt(pos - prev))
		prev = pos
	}
	return builder.String()
}
