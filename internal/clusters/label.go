package clusters

import (
	"sort"
	"strings"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
	"github.com/mohammad-safakhou/daydigest/internal/helpers"
	"github.com/mohammad-safakhou/daydigest/internal/textvec"
)

const labelTerms = 3

// Label names a cluster after the three most frequent words across its
// titles. Words are split on whitespace only and must be longer than three
// characters; ties keep first-seen order.
func Label(titles []string) string {
	counts := make(map[string]int)
	var order []string
	for _, title := range titles {
		for _, word := range strings.Fields(strings.ToLower(title)) {
			if len(word) <= 3 || textvec.IsStopword(word) {
				continue
			}
			if _, ok := counts[word]; !ok {
				order = append(order, word)
			}
			counts[word]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > labelTerms {
		order = order[:labelTerms]
	}
	return strings.Join(order, " ")
}

// InferIntent classifies a cluster from its visits. Three or more distinct
// domains mean research; otherwise a revisited URL means reference; anything
// else is browsing. A URL that does not parse counts as the domain "".
func InferIntent(visits []activity.Visit) activity.ClusterIntent {
	domains := make(map[string]struct{})
	urls := make(map[string]int)
	for _, v := range visits {
		host, err := helpers.Hostname(v.URL)
		if err != nil {
			host = ""
		}
		domains[host] = struct{}{}
		urls[v.URL]++
	}
	if len(domains) >= 3 {
		return activity.IntentResearch
	}
	for _, n := range urls {
		if n > 1 {
			return activity.IntentReference
		}
	}
	return activity.IntentBrowsing
}
