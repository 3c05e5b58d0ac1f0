package utils

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
	"\\", "\\\\",
)

// EscapeMarkdown escapes user-supplied text for Telegram MarkdownV2.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// DigitsOnly reports whether s is a non-empty string of ASCII digits, the
// shape the marketplace login expects for phone numbers.
func DigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
