package extract

import (
	"strings"
	"unicode"

	"github.com/radekw/apollo/model"
)

// aliasHostTypes are the entity types that can own a short-form alias.
var aliasHostTypes = map[model.EntityType]bool{
	model.EntityTypeDisease:     true,
	model.EntityTypeSyndrome:    true,
	model.EntityTypeProtein:     true,
	model.EntityTypeBrainRegion: true,
}

// detectAliases scans each sentence for the two parenthetical patterns
// "Long Form (SF)" and "SF (Long Form)" and links the short form to the
// adjacent canonical entity. The short form is suppressed as an
// independent entity at the evidence location; occurrences elsewhere in
// the document keep their own entity. The same short form may alias two
// different entities within one document; both aliases are emitted with
// distinct evidence spans.
func (e *Extractor) detectAliases(sentences []model.Sentence, kept []model.Mention, entities []*model.ResolvedEntity) ([]*model.Alias, []*model.ResolvedEntity) {
	var aliases []*model.Alias
	var suppressed []model.Span

	for _, sentence := range sentences {
		text := sentence.Text

		for open := strings.IndexByte(text, '('); open >= 0; {
			closing := strings.IndexByte(text[open:], ')')
			if closing < 0 {
				break
			}
			closing += open

			inner := text[open+1 : closing]
			trimmed := strings.TrimSpace(inner)
			innerStart := sentence.Start + open + 1 + (len(inner) - len(strings.TrimLeft(inner, " ")))
			innerEnd := innerStart + len(trimmed)

			// Position of the last non-space character before "(".
			before := open
			for before > 0 && text[before-1] == ' ' {
				before--
			}
			beforeAbs := sentence.Start + before

			if e.isShortForm(trimmed) {
				// "Long Form (SF)": the mention ending right before the
				// parenthesis owns the short form.
				if host, ok := mentionEndingAt(kept, beforeAbs); ok && aliasHostTypes[host.Type] {
					aliases = append(aliases, &model.Alias{
						CanonicalName: host.CanonicalName(),
						EntityType:    host.Type,
						Alias:         trimmed,
						Evidence:      model.Span{Start: innerStart, End: innerEnd},
					})
					suppressed = append(suppressed, model.Span{Start: innerStart, End: innerEnd})
				}
			} else if host, ok := mentionWithin(kept, innerStart, innerEnd); ok && aliasHostTypes[host.Type] {
				// "SF (Long Form)": the word right before the parenthesis
				// is the short form of the parenthesized mention.
				wordStart := before
				for wordStart > 0 && text[wordStart-1] != ' ' {
					wordStart--
				}
				word := text[wordStart:before]
				if e.isShortForm(word) {
					aliases = append(aliases, &model.Alias{
						CanonicalName: host.CanonicalName(),
						EntityType:    host.Type,
						Alias:         word,
						Evidence:      model.Span{Start: sentence.Start + wordStart, End: beforeAbs},
					})
					suppressed = append(suppressed, model.Span{Start: sentence.Start + wordStart, End: beforeAbs})
				}
			}

			next := strings.IndexByte(text[closing:], '(')
			if next < 0 {
				break
			}
			open = closing + next
		}
	}

	return aliases, suppressEvidenceMentions(entities, aliases, suppressed)
}

// isShortForm reports whether text looks like an acronym: bounded
// length, no internal spaces, and dominated by uppercase letters.
func (e *Extractor) isShortForm(text string) bool {
	if text == "" || len(text) > e.config.MaxShortFormLen || strings.ContainsRune(text, ' ') {
		return false
	}

	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		} else if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	if letters == 0 || upper == 0 {
		return false
	}

	return float64(upper)/float64(letters) >= e.config.MinUppercaseRatio
}

// mentionEndingAt returns the resolved mention whose span ends exactly
// at the given document offset.
func mentionEndingAt(kept []model.Mention, end int) (model.Mention, bool) {
	for _, m := range kept {
		if m.End == end {
			return m, true
		}
	}
	return model.Mention{}, false
}

// mentionWithin returns the longest resolved mention fully contained in
// [start, end).
func mentionWithin(kept []model.Mention, start, end int) (model.Mention, bool) {
	var best model.Mention
	found := false
	for _, m := range kept {
		if m.Start >= start && m.End <= end {
			if !found || m.Len() > best.Len() {
				best = m
				found = true
			}
		}
	}
	return best, found
}

// suppressEvidenceMentions removes alias-evidence spans from the
// resolved entities so a short form is not also emitted as an
// independent entity at its introduction site. Entities left without
// any span are dropped entirely.
func suppressEvidenceMentions(entities []*model.ResolvedEntity, aliases []*model.Alias, suppressed []model.Span) []*model.ResolvedEntity {
	if len(suppressed) == 0 {
		return entities
	}

	// The alias hosts keep their spans even if one coincides with an
	// evidence span ("SF (Long Form)" keeps the long-form mention).
	hostKeys := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		hostKeys[a.CanonicalName+"\x00"+string(a.EntityType)] = true
	}

	var result []*model.ResolvedEntity
	for _, entity := range entities {
		if hostKeys[entity.CanonicalName+"\x00"+string(entity.Type)] {
			result = append(result, entity)
			continue
		}

		var remaining []model.Span
		for _, span := range entity.Spans {
			if !spanSuppressed(span, suppressed) {
				remaining = append(remaining, span)
			}
		}
		if len(remaining) == 0 {
			continue
		}
		entity.Spans = remaining
		result = append(result, entity)
	}

	return result
}

func spanSuppressed(span model.Span, suppressed []model.Span) bool {
	for _, s := range suppressed {
		if span == s {
			return true
		}
	}
	return false
}
