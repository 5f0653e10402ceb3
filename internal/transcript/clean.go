// Package transcript tidies raw speech-to-text output for reading.
package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	bracketRe = regexp.MustCompile(`(?s)\[.*?\]`)
	fillerRe  = regexp.MustCompile(`(?i)\b(uh|um|you know|yeah|okay|right|I mean)\b`)
	spaceRe   = regexp.MustCompile(`\s+`)
	// punctuation orphaned by a removed filler: " ," or a leading ", "
	spaceBeforePunctRe = regexp.MustCompile(`\s+([,;:.!?])`)
	leadingPunctRe     = regexp.MustCompile(`^[,;:]+\s*`)
	repeatedCommaRe    = regexp.MustCompile(`,(\s*,)+`)
)

// Clean removes bracketed cues such as "[music]", drops isolated filler
// words, collapses consecutive duplicate sentences (case-insensitive),
// normalizes whitespace and capitalizes each sentence.
func Clean(text string) string {
	text = bracketRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	var out []string
	prev := ""
	for _, s := range splitSentences(text) {
		norm := normalizeSentence(s)
		if norm == "" {
			continue
		}
		if prev != "" && strings.EqualFold(norm, prev) {
			continue
		}
		out = append(out, capitalize(norm))
		prev = norm
	}
	return strings.Join(out, " ")
}

// splitSentences splits after '.', '!' or '?' when followed by whitespace.
// The terminator stays with its sentence.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		parts = append(parts, text[start:i+1])
		start = j
		i = j - 1
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func normalizeSentence(s string) string {
	s = fillerRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	s = repeatedCommaRe.ReplaceAllString(s, ",")
	s = spaceBeforePunctRe.ReplaceAllString(s, "$1")
	s = leadingPunctRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSpace(s)
	if strings.Trim(s, ",;:.!? ") == "" {
		return ""
	}
	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
