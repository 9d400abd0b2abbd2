package bibtex

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// combining maps LaTeX accent commands to Unicode combining marks.
var combining = map[byte]rune{
	'\'': '\u0301',
	'`':  '\u0300',
	'^':  '\u0302',
	'~':  '\u0303',
	'"':  '\u0308',
	'=':  '\u0304',
	'.':  '\u0307',
	'c':  '\u0327',
	'v':  '\u030C',
	'u':  '\u0306',
	'H':  '\u030B',
}

// symbols maps escaped characters and ligature macros to text.
var symbols = map[string]string{
	`\&`: "&", `\%`: "%", `\$`: "$", `\#`: "#", `\_`: "_",
	`\ss`: "ß", `\o`: "ø", `\O`: "Ø", `\aa`: "å", `\AA`: "Å",
	`\ae`: "æ", `\AE`: "Æ", `\l`: "ł", `\L`: "Ł", `\i`: "ı",
	`--`: "-", `~`: " ",
}

var (
	accentRe = regexp.MustCompile(`\\([\x60'^~"=.])\s*(?:\{\s*(\\?[A-Za-z])\s*\}|(\\?[A-Za-z]))`)
	letterRe = regexp.MustCompile(`\\([cvuH])\s*\{\s*(\\?[A-Za-z])\s*\}`)
	symbolRe = regexp.MustCompile(`\\(ss|o|O|aa|AA|ae|AE|l|L|i)\b|\\[&%$#_]|--|~`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// cleanText converts a raw field value into plain NFC text. Accent commands
// become composed characters and grouping braces are dropped.
func cleanText(raw string) string {
	s := accentRe.ReplaceAllStringFunc(raw, func(m string) string {
		sub := accentRe.FindStringSubmatch(m)
		return compose(sub[1], sub[2]+sub[3])
	})
	s = letterRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := letterRe.FindStringSubmatch(m)
		return compose(sub[1], sub[2])
	})
	s = symbolRe.ReplaceAllStringFunc(s, func(m string) string {
		if r, ok := symbols[m]; ok {
			return r
		}
		return m
	})
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(s))
}

// compose returns letter followed by the combining mark for accent. A
// dotless-i command yields a plain i.
func compose(accent, letter string) string {
	return strings.TrimPrefix(letter, `\`) + string(combining[accent[0]])
}

var keywordSepRe = regexp.MustCompile(`[,;]`)

// splitAuthors splits a raw BibTeX author field on " and " (any case) at
// brace depth 0, then cleans each name. A braced group such as
// {Barnes and Noble} stays a single author.
func splitAuthors(field string) []string {
	var out []string
	add := func(raw string) {
		if a := cleanText(raw); a != "" {
			out = append(out, a)
		}
	}

	depth, start := 0, 0
	for i := 0; i < len(field); i++ {
		switch c := field[i]; {
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0 && isSpace(c):
			if n := andSeparator(field[i:]); n > 0 {
				add(field[start:i])
				start = i + n
				i = start - 1
			}
		}
	}
	add(field[start:])
	return out
}

// andSeparator returns the length of a leading "<space>and<space>" run in
// s, or 0 when s does not start with one.
func andSeparator(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i == 0 || len(s) < i+3 || !strings.EqualFold(s[i:i+3], "and") {
		return 0
	}
	j := i + 3
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	if j == i+3 {
		return 0
	}
	return j
}

// splitKeywords splits a keyword field on commas and semicolons.
func splitKeywords(field string) []string {
	var out []string
	for _, k := range keywordSepRe.Split(cleanText(field), -1) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
