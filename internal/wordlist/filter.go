package wordlist

import (
	"unicode"
	"unicode/utf8"
)

// MaxWordLen is the longest word kept by Default.
const MaxWordLen = 16

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Default keeps typeable words no longer than MaxWordLen runes.
var Default = All(Typeable, MaxLen(MaxWordLen))

// All keeps a word only when every filter keeps it.
func All(filters ...FilterFunc) FilterFunc {
	return func(word string) bool {
		for _, keep := range filters {
			if !keep(word) {
				return false
			}
		}
		return true
	}
}

// MaxLen keeps words of at most n runes.
func MaxLen(n int) FilterFunc {
	return func(word string) bool {
		return utf8.RuneCountInString(word) <= n
	}
}

// Typeable keeps words with at least one letter and only printable runes.
func Typeable(word string) bool {
	hasLetter := false
	for _, r := range word {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
