package golang

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Document names become Go identifiers word by word. A word ends at any rune
// that is neither a letter nor a digit, and before an upper-case letter that
// follows a lower-case letter or a digit. Known initialisms keep their
// upper-case spelling.

type initialismSet map[string]struct{}

func (s initialismSet) add(words ...string) {
	for _, w := range words {
		s[strings.ToUpper(w)] = struct{}{}
	}
}

func (s initialismSet) has(word string) bool {
	_, ok := s[strings.ToUpper(word)]
	return ok
}

var initialisms = func() initialismSet {
	s := initialismSet{}
	s.add(
		"API", "ASCII", "CPU", "CSS", "CVV", "DNS", "EOF", "GUID", "HTML", "HTTP",
		"HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA",
		"SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI",
		"URL", "UTF8", "UUID", "VM", "XML", "XMPP", "XSRF", "XSS",
	)
	return s
}()

// SetAdditionalInitialisms extends the initialism list. Call it before
// generation starts.
func SetAdditionalInitialisms(words []string) {
	initialisms.add(words...)
}

// PascalCase joins the words of s with each one capitalized.
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(exportedWord(w))
	}
	return b.String()
}

// CamelCase is PascalCase with the first word in lower case.
func CamelCase(s string) string {
	var b strings.Builder
	for i, w := range splitWords(s) {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(exportedWord(w))
	}
	return b.String()
}

func SnakeCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func splitWords(s string) []string {
	var words []string
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) }) {
		start := 0
		var prev rune
		for i, r := range field {
			if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				words = append(words, field[start:i])
				start = i
			}
			prev = r
		}
		words = append(words, field[start:])
	}
	return words
}

func exportedWord(w string) string {
	if initialisms.has(w) {
		return strings.ToUpper(w)
	}
	return capitalize(w)
}

// capitalize upper-cases the first rune of a word and lower-cases the rest.
func capitalize(w string) string {
	first, size := utf8.DecodeRuneInString(w)
	if size == 0 {
		return w
	}
	return string(unicode.ToUpper(first)) + cases.Lower(language.English).String(w[size:])
}

// ToGoIdentifier turns any document name (schema, tag, path, media type)
// into an exported Go identifier.
func ToGoIdentifier(s string) string {
	id := PascalCase(s)
	if id == "" {
		return "X"
	}
	if first, _ := utf8.DecodeRuneInString(id); unicode.IsDigit(first) {
		return "X" + id
	}
	return id
}

// EscapeKeyword appends an underscore to s when it spells a Go keyword in
// any letter case.
func EscapeKeyword(s string) string {
	if token.IsKeyword(strings.ToLower(s)) {
		return s + "_"
	}
	return s
}
