package speech

import (
	"path/filepath"
	"strings"
)

func isNameDelim(c byte) bool { return c == '_' || c == '-' || c == '.' }

// NormalizeOutputFilename returns path with the normalized voice label as
// the filename's leading "label_" token. A filename that already starts
// with that token is returned unchanged. Otherwise every delimiter-bounded
// occurrence of the label (bounded by the ends of the stem or one of _ - .)
// is removed from the stem and the label is prepended, so the label appears
// exactly once, in front. A stem consisting of nothing but the label is
// kept once as the title: "andrewcohan.mp3" and "andrewcohan-andrewcohan.mp3"
// both become "andrewcohan_andrewcohan.mp3".
// Directory and extension are preserved; matching is case-insensitive.
func NormalizeOutputFilename(label, path string) string {
	out, _ := TryNormalizeOutputFilename(label, path)
	return out
}

// TryNormalizeOutputFilename is NormalizeOutputFilename reporting whether a
// prefix could be computed. ok is false (and path is returned as is) when
// the label normalizes to nothing or path has no filename.
func TryNormalizeOutputFilename(label, path string) (string, bool) {
	norm := NormalizeLabel(label)
	if norm == "" {
		return path, false
	}
	dir, base := filepath.Split(path)
	if base == "" {
		return path, false
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if strings.HasPrefix(strings.ToLower(stem), norm+"_") {
		return path, true
	}

	rest, first := stripLabelToken(stem, norm)
	if rest == "" {
		rest = first
	}
	return dir + norm + "_" + rest + ext, true
}

// stripLabelToken removes delimiter-bounded occurrences of norm from stem
// and returns what is left along with the first removed token in its
// original case. Each kept token is rejoined with the delimiter that
// preceded it in stem. If norm does not occur, stem is returned untouched.
func stripLabelToken(stem, norm string) (rest, first string) {
	type token struct {
		sep  byte // delimiter before text; 0 for the first token
		text string
	}
	var tokens []token
	var sep byte
	start := 0
	for i := 0; i <= len(stem); i++ {
		if i < len(stem) && !isNameDelim(stem[i]) {
			continue
		}
		tokens = append(tokens, token{sep: sep, text: stem[start:i]})
		if i < len(stem) {
			sep = stem[i]
		}
		start = i + 1
	}

	for _, t := range tokens {
		if strings.ToLower(t.text) == norm {
			first = t.text
			break
		}
	}
	if first == "" {
		return stem, ""
	}

	var b strings.Builder
	for _, t := range tokens {
		if t.text == "" || strings.ToLower(t.text) == norm {
			continue
		}
		if b.Len() > 0 {
			s := t.sep
			if s == 0 {
				s = '_'
			}
			b.WriteByte(s)
		}
		b.WriteString(t.text)
	}
	return b.String(), first
}
