// Package missions chains a day's search queries into missions and attaches
// the pages visited while each mission was active.
package missions

import (
	"sort"
	"strings"
	"time"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
)

// DefaultWindow is the largest gap between consecutive queries of a chain.
const DefaultWindow = 10 * time.Minute

// queryStopwords is deliberately small: search queries are short and most of
// their words matter.
var queryStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "how": {}, "what": {}, "why": {},
	"when": {}, "where": {}, "who": {}, "with": {}, "are": {}, "can": {},
	"does": {}, "you": {}, "your": {}, "this": {}, "that": {}, "from": {},
	"into": {}, "about": {}, "was": {}, "not": {}, "has": {}, "have": {},
}

// ContentWords returns the set of query words that survive lower-casing,
// punctuation stripping, the length filter and the stopword list.
func ContentWords(query string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := queryStopwords[f]; stop {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}

func sharesWord(a, b map[string]struct{}) bool {
	for w := range b {
		if _, ok := a[w]; ok {
			return true
		}
	}
	return false
}

// Chain sorts queries by time and partitions them into chains. A query joins
// the open chain when it follows the chain's latest query within window and
// shares a content word with the chain's first query.
func Chain(queries []activity.SearchQuery, window time.Duration) [][]activity.SearchQuery {
	if window <= 0 {
		window = DefaultWindow
	}
	sorted := append([]activity.SearchQuery(nil), queries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return activity.TimeKey(sorted[i].Timestamp) < activity.TimeKey(sorted[j].Timestamp)
	})

	chains := make([][]activity.SearchQuery, 0)
	for i := 0; i < len(sorted); {
		anchor := sorted[i]
		anchorWords := ContentWords(anchor.Query)
		chain := []activity.SearchQuery{anchor}
		j := i + 1
		for ; j < len(sorted); j++ {
			next := sorted[j]
			last := chain[len(chain)-1]
			gap := time.Duration(activity.TimeKey(next.Timestamp)-activity.TimeKey(last.Timestamp)) * time.Millisecond
			if gap > window || !sharesWord(anchorWords, ContentWords(next.Query)) {
				break
			}
			chain = append(chain, next)
		}
		chains = append(chains, chain)
		i = j
	}
	return chains
}
