package textvec

import (
	"strings"

	"github.com/blevesearch/bleve/analysis"
	"github.com/blevesearch/bleve/analysis/lang/en"
)

// webNoise are words that show up in page titles and URLs without saying
// anything about the topic.
var webNoise = []string{
	"www", "com", "org", "net", "http", "https", "html", "htm", "php",
	"page", "home", "index", "untitled", "welcome", "site",
}

// stopwords is built once at package initialisation and only read afterwards.
var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	tm := analysis.NewTokenMap()
	if err := tm.LoadBytes(en.EnglishStopWords); err != nil {
		// the embedded list is static; a load failure leaves the noise list only
		tm = analysis.NewTokenMap()
	}
	out := make(map[string]struct{}, len(tm)+len(webNoise))
	for word := range tm {
		out[strings.ToLower(word)] = struct{}{}
	}
	for _, word := range webNoise {
		out[strings.ToLower(word)] = struct{}{}
	}
	return out
}

// IsStopword reports whether the lower-cased term is in the stopword table.
func IsStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}
