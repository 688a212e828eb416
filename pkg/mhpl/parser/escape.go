package parser

import "strings"

const (
	escapedBackslash = `\\`
	escapedHash      = `\#`
)

// Unescape resolves the two escape sequences in text: `\\` becomes `\` and
// `\#` becomes `#`. Sequences are consumed leftmost first, so in `\\#` the
// backslash pair wins and the hash stays literal. Any other backslash is
// kept as is.
func Unescape(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	for {
		bs := strings.Index(text, escapedBackslash)
		hs := strings.Index(text, escapedHash)

		if bs < 0 && hs < 0 {
			sb.WriteString(text)
			return sb.String()
		}

		idx, literal := bs, byte('\\')
		if bs < 0 || (hs >= 0 && hs < bs) {
			idx, literal = hs, '#'
		}

		sb.WriteString(text[:idx])
		sb.WriteByte(literal)
		text = text[idx+2:]
	}
}

// Escape is the inverse of Unescape for literal text: it returns a template
// fragment that renders to text unchanged.
func Escape(text string) string {
	if !strings.ContainsAny(text, `\#`) {
		return text
	}
	r := strings.NewReplacer(`\`, escapedBackslash, `#`, escapedHash)
	return r.Replace(text)
}
