// Package moderation censors forbidden words in message content before it
// reaches persistence or delivery. Matching is resilient to casing, common
// leet-speak substitutions, and separator noise.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/abadojack/whatlanggo"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

// textMapping links the normalized search text back to rune positions in
// the original, so only the matched characters get replaced.
type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the Aho-Corasick automaton over the normalized word
// list. An empty list is an error; callers wanting a passthrough should use
// a nil *Moderator instead.
func NewModerator(censoredWords []string, censoredChar rune) (*Moderator, error) {
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar}, nil
}

// Censor replaces every character of each forbidden match with the
// censoring rune, preserving length and spacing of the original.
func (m *Moderator) Censor(original string) string {
	mapping := m.normalize(original)
	if len(mapping.normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original
	}

	origRunes := []rune(original)
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes)
}

// DetectLanguage returns the ISO 639-1 code of the most likely language of
// the content, empty when detection fails.
func DetectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	return info.Lang.Iso6391()
}

func (m *Moderator) normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet-speak characters back to their standard
// alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
