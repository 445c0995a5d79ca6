// Package similarity scores how closely a country's chart matches a
// listener's taste.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var featuredMarkers = map[string]struct{}{
	"feat":      {},
	"ft":        {},
	"featuring": {},
}

var genreStopWords = map[string]struct{}{
	"music": {},
	"pop":   {},
	"rap":   {},
	"rock":  {},
	"hip":   {},
	"hop":   {},
	"rnb":   {},
	"and":   {},
	"the":   {},
	"of":    {},
	"to":    {},
	"a":     {},
}

const minGenreTokenLen = 3

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeText reduces a title or artist name to a comparison form:
// lowercase, accents folded, bracketed asides and any featured-artist clause
// removed, "&" spelled "and", punctuation turned to single spaces.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	folded := foldDiacritics(strings.ToLower(s))
	stripped := strings.ReplaceAll(stripBracketedSegments(folded), "&", " and ")
	tokens := strings.Fields(cleanSeparators(stripped))

	for i, token := range tokens {
		if _, ok := featuredMarkers[token]; ok && i > 0 {
			tokens = tokens[:i]
			break
		}
	}

	return strings.Join(tokens, " ")
}

// SongKey identifies a song across sources.
func SongKey(title, artist string) string {
	return NormalizeText(title) + "|" + NormalizeText(artist)
}

// TokenizeGenre splits a genre phrase into its meaningful words.
func TokenizeGenre(genre string) []string {
	var tokens []string
	for _, t := range strings.Fields(NormalizeText(genre)) {
		if len([]rune(t)) < minGenreTokenLen {
			continue
		}
		if _, stop := genreStopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
			out.WriteRune(' ')
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}
