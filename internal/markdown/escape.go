package markdown

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"
)

// alwaysEscaped lists the characters that can open an inline construct
// anywhere on a line.
const alwaysEscaped = "\\*_`[]<>~&#!"

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

func isBlank(c byte) bool {
	return isSpaceOrTab(c) || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// edgeEntity replaces whitespace that markdown would otherwise trim.
func edgeEntity(c byte) string {
	switch c {
	case '\t':
		return "&#9;"
	case '\n':
		return "&#10;"
	default:
		return "&#32;"
	}
}

// protectTrailing encodes the trailing blanks of every line so a re-import
// keeps them.
func protectTrailing(s string) string {
	if !strings.ContainsAny(s, " \t") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		end := len(line)
		for end > 0 && isSpaceOrTab(line[end-1]) {
			end--
		}
		if end == len(line) {
			continue
		}
		var b strings.Builder
		b.WriteString(line[:end])
		for j := end; j < len(line); j++ {
			b.WriteString(edgeEntity(line[j]))
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// escapeDestination renders a link or image destination. Destinations with
// blanks or angle brackets use the <...> form.
func escapeDestination(href string) string {
	var b strings.Builder
	if strings.ContainsAny(href, " \t\n<>") {
		b.WriteByte('<')
		for i := 0; i < len(href); i++ {
			switch c := href[i]; c {
			case '\\', '&', '<', '>':
				b.WriteByte('\\')
				b.WriteByte(c)
			case '\n':
				b.WriteString("%0A")
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('>')
		return b.String()
	}
	for i := 0; i < len(href); i++ {
		switch c := href[i]; c {
		case '\\', '&', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// decodeInline resolves backslash escapes and character references the way
// an HTML renderer would. Both are kept verbatim in goldmark text segments.
func decodeInline(raw []byte) string {
	if !strings.ContainsAny(string(raw), "\\&") {
		return string(raw)
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw) && util.IsPunct(raw[i+1]):
			b.WriteByte(raw[i+1])
			i++
		case c == '&':
			if n, value := resolveReference(raw[i:]); n > 0 {
				b.WriteString(value)
				i += n - 1
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// resolveReference decodes a character reference at the start of raw and
// returns how many bytes it spans. Zero means raw does not start with one.
func resolveReference(raw []byte) (int, string) {
	end := -1
	for i := 1; i < len(raw) && i <= 33; i++ {
		if raw[i] == ';' {
			end = i
			break
		}
	}
	if end < 2 {
		return 0, ""
	}
	body := string(raw[1:end])
	if body[0] == '#' {
		r, ok := numericReference(body[1:])
		if !ok {
			return 0, ""
		}
		return end + 1, string(r)
	}
	for i := 0; i < len(body); i++ {
		if !util.IsAlphaNumeric(body[i]) {
			return 0, ""
		}
	}
	entity, ok := util.LookUpHTML5EntityByName(body)
	if !ok {
		return 0, ""
	}
	return end + 1, string(entity.Characters)
}

func numericReference(digits string) (rune, bool) {
	base, maxLen := 10, 7
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		base, maxLen = 16, 6
		digits = digits[1:]
	}
	if digits == "" || len(digits) > maxLen {
		return 0, false
	}
	value, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	r := rune(value)
	if r == 0 || !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	return r, true
}
