package missions

import (
	"regexp"
	"strconv"
	"time"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
)

var (
	navigationalRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bsite:`),
		regexp.MustCompile(`(?i)\bdocs?\b`),
		regexp.MustCompile(`(?i)\bgithub\b`),
		regexp.MustCompile(`(?i)\bnpm\b`),
		regexp.MustCompile(`(?i)\bofficial\b`),
		regexp.MustCompile(`(?i)\b(log ?in|sign ?in)\b`),
		regexp.MustCompile(`(?i)\bdownload\b`),
	}
	informationalRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(how|what|why|when|where|who|which|is|are|can|does|do|should)\b`),
		regexp.MustCompile(`(?i)\bcompare\b`),
		regexp.MustCompile(`(?i)\bvs\.?(\s|$)`),
		regexp.MustCompile(`(?i)\bdifference between\b`),
	}
)

// ClassifyIntent checks navigational markers first, then informational
// ones, and defaults to transactional.
func ClassifyIntent(query string) activity.SearchIntent {
	for _, re := range navigationalRules {
		if re.MatchString(query) {
			return activity.SearchNavigational
		}
	}
	for _, re := range informationalRules {
		if re.MatchString(query) {
			return activity.SearchInformational
		}
	}
	return activity.SearchTransactional
}

// Assembler builds search missions.
type Assembler struct {
	window time.Duration
}

// NewAssembler returns an Assembler; a non-positive window uses DefaultWindow.
func NewAssembler(window time.Duration) *Assembler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Assembler{window: window}
}

// Window returns the effective chaining window.
func (a *Assembler) Window() time.Duration { return a.window }

// Assemble returns one mission per query chain, including single-query
// chains. Visits whose timestamp falls in [first query, last query + window]
// are attached to the mission; undated visits are never attached.
func (a *Assembler) Assemble(queries []activity.SearchQuery, visits []activity.Visit) []activity.SearchMission {
	chains := Chain(queries, a.window)
	out := make([]activity.SearchMission, 0, len(chains))
	for i, chain := range chains {
		anchor := chain[0]
		tr := activity.TimeRange{Start: anchor.Timestamp, End: chain[len(chain)-1].Timestamp}
		out = append(out, activity.SearchMission{
			ID:         activity.StableID("mission", strconv.Itoa(i), anchor.Query, strconv.FormatInt(activity.TimeKey(anchor.Timestamp), 10)),
			Label:      anchor.Query,
			Queries:    chain,
			Visits:     a.visitsWithin(tr, visits),
			TimeRange:  tr,
			IntentType: ClassifyIntent(anchor.Query),
		})
	}
	return out
}

func (a *Assembler) visitsWithin(tr activity.TimeRange, visits []activity.Visit) []activity.Visit {
	start := activity.TimeKey(tr.Start)
	end := activity.TimeKey(tr.End) + a.window.Milliseconds()
	out := make([]activity.Visit, 0)
	for _, v := range visits {
		if v.Timestamp.IsZero() {
			continue
		}
		ts := v.Timestamp.UnixMilli()
		if ts >= start && ts <= end {
			out = append(out, v)
		}
	}
	return out
}
