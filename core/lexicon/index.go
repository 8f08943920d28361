// Package lexicon provides the in-memory curated-term index used to
// detect entity mentions by exact, normalization-insensitive matching.
package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/radekw/apollo/model"
)

// diacriticStripper removes combining marks after NFD decomposition, so
// "Gehirn-Läsion" and "Gehirn-Lasion" normalize identically.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize maps a surface string to its lookup key: diacritics
// stripped, lowercased, hyphens treated as spaces, whitespace collapsed.
func Normalize(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ToLower(stripped)
	stripped = strings.ReplaceAll(stripped, "-", " ")
	return strings.Join(strings.Fields(stripped), " ")
}

// Match is the result of a successful index lookup.
type Match struct {
	CanonicalName string
	Type          model.EntityType
}

// Index maps normalized surface forms to canonical entity identities.
// It is built once at startup from the curated lists and is never
// mutated afterwards, so concurrent readers are safe by construction.
type Index struct {
	entries  map[string]Match
	maxWords int
}

// NewIndex builds an index from curated lexicon entries. Entries whose
// surface form normalizes to the empty string are skipped. When two
// entries normalize to the same key, the first one wins.
func NewIndex(entries []model.LexiconEntry) *Index {
	index := &Index{entries: make(map[string]Match, len(entries))}

	for _, entry := range entries {
		key := Normalize(entry.Surface)
		if key == "" {
			continue
		}
		if _, exists := index.entries[key]; exists {
			continue
		}
		index.entries[key] = Match{
			CanonicalName: entry.CanonicalName,
			Type:          entry.Type,
		}
		if words := strings.Count(key, " ") + 1; words > index.maxWords {
			index.maxWords = words
		}
	}

	return index
}

// Lookup returns the canonical identity for an already-normalized
// surface string.
func (x *Index) Lookup(normalized string) (Match, bool) {
	match, ok := x.entries[normalized]
	return match, ok
}

// Len returns the number of distinct normalized surface forms.
func (x *Index) Len() int {
	return len(x.entries)
}

// token is one whitespace-delimited word of a sentence with punctuation
// trimmed from its edges, carrying document-absolute offsets.
type token struct {
	start int
	end   int
	norm  string
}

// tokenize splits sentence text into tokens with document-absolute
// offsets. base is the document offset of the first character of text.
func tokenize(text string, base int) []token {
	var tokens []token

	i := 0
	for i < len(text) {
		// Skip whitespace between words.
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if i >= len(text) {
			break
		}

		start := i
		for i < len(text) && !isSpace(text[i]) {
			i++
		}
		end := i

		// Trim punctuation at the word edges; internal punctuation
		// ("p-tau", "Alzheimer's") stays.
		for start < end && isEdgePunct(text[start]) {
			start++
		}
		for end > start && isEdgePunct(text[end-1]) {
			end--
		}
		if start >= end {
			continue
		}

		normed := Normalize(text[start:end])
		if normed == "" {
			continue
		}

		tokens = append(tokens, token{
			start: base + start,
			end:   base + end,
			norm:  normed,
		})
	}

	return tokens
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isEdgePunct(b byte) bool {
	switch b {
	case '(', ')', '[', ']', '{', '}', ',', '.', ';', ':', '!', '?', '"', '\'':
		return true
	}
	return false
}

// ScanSentence finds all lexicon matches in one sentence and returns
// them as mentions with confidence 1.0. Longest match wins: once an
// n-gram matches, scanning resumes after it, so "temporal lobe" is
// never also reported as "lobe".
func (x *Index) ScanSentence(sentence model.Sentence) []model.Mention {
	tokens := tokenize(sentence.Text, sentence.Start)

	var mentions []model.Mention
	for i := 0; i < len(tokens); i++ {
		longest := x.maxWords
		if remaining := len(tokens) - i; remaining < longest {
			longest = remaining
		}

		for n := longest; n >= 1; n-- {
			j := i + n - 1
			key := joinNorms(tokens[i : j+1])
			match, ok := x.entries[key]
			if !ok {
				continue
			}

			mentions = append(mentions, model.Mention{
				Span:       model.Span{Start: tokens[i].start, End: tokens[j].end},
				Surface:    sentence.Text[tokens[i].start-sentence.Start : tokens[j].end-sentence.Start],
				Type:       match.Type,
				Source:     model.MentionSourceLexicon,
				Confidence: 1.0,
				Canonical:  match.CanonicalName,
			})
			i = j
			break
		}
	}

	return mentions
}

func joinNorms(tokens []token) string {
	norms := make([]string, len(tokens))
	for i, t := range tokens {
		norms[i] = t.norm
	}
	return strings.Join(norms, " ")
}
