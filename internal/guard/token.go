package guard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContainsToken reports whether token occurs in windowText. Identifier-like
// tokens must sit on identifier boundaries (so "len" does not match "length");
// other tokens, such as "println!", match as plain substrings. The check is
// lexical only and also matches inside comments and strings.
func ContainsToken(windowText, token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if !isIdentifier(token) {
		return strings.Contains(windowText, token)
	}
	for i := 0; i <= len(windowText)-len(token); {
		j := strings.Index(windowText[i:], token)
		if j < 0 {
			return false
		}
		at := i + j
		if boundaryBefore(windowText, at) && boundaryAfter(windowText, at+len(token)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(windowText[at:])
		i = at + size
	}
	return false
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentifier(s string) bool {
	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func boundaryBefore(s string, at int) bool {
	if at == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:at])
	return !isIdentRune(r)
}

func boundaryAfter(s string, at int) bool {
	if at >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[at:])
	return !isIdentRune(r)
}
