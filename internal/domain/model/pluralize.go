package model

import "strings"

var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"goose":  "geese",
}

var uncountable = map[string]bool{
	"news": true, "series": true, "species": true, "information": true, "equipment": true,
}

// Pluralize returns the collection-style plural of a lower-cased English noun.
func Pluralize(word string) string {
	if word == "" || uncountable[word] {
		return word
	}
	if p, ok := irregularPlurals[word]; ok {
		return p
	}

	switch {
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(word[len(word)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "s"),
		strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"),
		strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}
