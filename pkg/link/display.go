package link

import (
	"strings"
	"unicode"
)

// DisplayText decodes payload as text for display only: invalid UTF-8 is
// replaced and trailing whitespace and NUL framing are trimmed. The bytes on
// the wire are never affected.
func DisplayText(payload []byte) string {
	s := strings.ToValidUTF8(string(payload), "�")
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})
}
