// Package textvec turns short texts into sparse TF-IDF vectors and compares
// them.
package textvec

import "strings"

// Tokenize lower-cases text, treats every byte outside [a-z0-9] as a
// separator and keeps tokens longer than two characters that are not
// stopwords.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 || IsStopword(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
