// Package clusters groups a day's engaged browser visits into reading
// clusters with a single greedy pass over TF-IDF title vectors.
package clusters

import (
	"sort"
	"strconv"
	"time"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
	"github.com/mohammad-safakhou/daydigest/internal/textvec"
)

const (
	DefaultEngagementThreshold = 0.5
	DefaultSimilarityThreshold = 0.3
	DefaultSessionGap          = 45 * time.Minute
)

// Options tunes the clustering pass. Zero is a valid value for every field:
// a zero engagement threshold keeps every visit and a zero similarity
// threshold groups on the time gap alone. Negative fields select the defaults.
type Options struct {
	EngagementThreshold float64
	SimilarityThreshold float64
	SessionGap          time.Duration
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		EngagementThreshold: DefaultEngagementThreshold,
		SimilarityThreshold: DefaultSimilarityThreshold,
		SessionGap:          DefaultSessionGap,
	}
}

// Normalize replaces negative fields with defaults.
func (o Options) Normalize() Options {
	if o.EngagementThreshold < 0 {
		o.EngagementThreshold = DefaultEngagementThreshold
	}
	if o.SimilarityThreshold < 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.SessionGap < 0 {
		o.SessionGap = DefaultSessionGap
	}
	return o
}

// Engine builds article clusters. It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine returns an engine with normalised options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.Normalize()}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// building is a cluster under construction; members index into the sorted
// visit slice so title vectors are shared across clusters.
type building struct {
	cluster activity.ArticleCluster
	members []int
	last    time.Time
}

// Cluster filters visits by engagement, orders them by time and assigns each
// to the first existing cluster (in creation order) that is both recent
// enough and similar enough, starting a new cluster otherwise. Clusters with
// fewer than two articles are dropped from the result.
func (e *Engine) Cluster(visits []activity.ScoredVisit) []activity.ArticleCluster {
	engaged := make([]activity.ScoredVisit, 0, len(visits))
	for _, v := range visits {
		if v.Engagement >= e.opts.EngagementThreshold {
			engaged = append(engaged, v)
		}
	}
	if len(engaged) == 0 {
		return []activity.ArticleCluster{}
	}
	sort.SliceStable(engaged, func(i, j int) bool {
		return activity.TimeKey(engaged[i].Timestamp) < activity.TimeKey(engaged[j].Timestamp)
	})

	titles := make([]string, len(engaged))
	for i, v := range engaged {
		titles[i] = v.CleanedTitle
	}
	vectors := textvec.BuildTFIDF(titles)

	var open []*building
	for i, v := range engaged {
		target := e.match(open, v, vectors[i], vectors)
		if target == nil {
			open = append(open, &building{
				cluster: activity.ArticleCluster{
					ID:              activity.StableID("cluster", strconv.Itoa(i), v.URL, strconv.FormatInt(activity.TimeKey(v.Timestamp), 10)),
					Articles:        []string{v.CleanedTitle},
					Visits:          []activity.Visit{v.Visit},
					TimeRange:       activity.TimeRange{Start: v.Timestamp, End: v.Timestamp},
					EngagementScore: v.Engagement,
				},
				members: []int{i},
				last:    v.Timestamp,
			})
			continue
		}
		c := &target.cluster
		c.Articles = append(c.Articles, v.CleanedTitle)
		c.Visits = append(c.Visits, v.Visit)
		c.TimeRange.End = v.Timestamp
		n := float64(len(c.Articles))
		c.EngagementScore = (c.EngagementScore*(n-1) + v.Engagement) / n
		target.members = append(target.members, i)
		target.last = v.Timestamp
	}

	out := make([]activity.ArticleCluster, 0, len(open))
	for _, b := range open {
		c := b.cluster
		c.Label = Label(c.Articles)
		c.IntentSignal = InferIntent(c.Visits)
		if len(c.Articles) < 2 {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (e *Engine) match(open []*building, v activity.ScoredVisit, vec textvec.Vector, vectors []textvec.Vector) *building {
	for _, b := range open {
		if v.Timestamp.IsZero() || b.last.IsZero() {
			continue
		}
		if v.Timestamp.Sub(b.last) > e.opts.SessionGap {
			continue
		}
		members := make([]textvec.Vector, len(b.members))
		for k, idx := range b.members {
			members[k] = vectors[idx]
		}
		if textvec.CosineSimilarity(vec, textvec.Centroid(members)) >= e.opts.SimilarityThreshold {
			return b
		}
	}
	return nil
}
