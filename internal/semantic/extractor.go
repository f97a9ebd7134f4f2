// Package semantic composes the clustering, task-session and search-mission
// engines into a single per-day extraction.
package semantic

import (
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
	"github.com/mohammad-safakhou/daydigest/internal/clusters"
	"github.com/mohammad-safakhou/daydigest/internal/helpers"
	"github.com/mohammad-safakhou/daydigest/internal/missions"
	"github.com/mohammad-safakhou/daydigest/internal/tasks"
	"github.com/mohammad-safakhou/daydigest/internal/telemetry"
)

// DayInput is one day of sanitised, scored activity.
type DayInput struct {
	Date    string                      `json:"date,omitempty"`
	Visits  []activity.ScoredVisit      `json:"visits"`
	Turns   []activity.ConversationTurn `json:"turns"`
	Queries []activity.SearchQuery      `json:"queries"`
	Commits []activity.CommitWorkUnit   `json:"commits,omitempty"`
}

// Digest is the structured output handed to the knowledge-section generator.
type Digest struct {
	Date           string                        `json:"date,omitempty"`
	Clusters       []activity.ArticleCluster     `json:"clusters"`
	TaskSessions   []activity.TaskSession        `json:"task_sessions"`
	SearchMissions []activity.SearchMission      `json:"search_missions"`
	Unified        []activity.UnifiedTaskSession `json:"unified"`
}

// Options wires the engines. A nil Clusters selects clusters.DefaultOptions;
// other zero values select defaults.
type Options struct {
	Clusters      *clusters.Options
	MissionWindow time.Duration
	Classifier    tasks.Classifier
	TopicRules    []tasks.TopicRule
	Logger        *log.Logger
	Metrics       *telemetry.Metrics
}

// Extractor is safe for concurrent use: the engines it holds are stateless.
type Extractor struct {
	clusters *clusters.Engine
	tasks    *tasks.Builder
	missions *missions.Assembler
	logger   *log.Logger
	metrics  *telemetry.Metrics
}

// NewExtractor builds an Extractor from opts.
func NewExtractor(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[SEMANTIC] ", log.LstdFlags)
	}
	clusterOpts := clusters.DefaultOptions()
	if opts.Clusters != nil {
		clusterOpts = *opts.Clusters
	}
	return &Extractor{
		clusters: clusters.NewEngine(clusterOpts),
		tasks:    tasks.NewBuilder(opts.Classifier, opts.TopicRules),
		missions: missions.NewAssembler(opts.MissionWindow),
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// ClusterArticles groups engaged visits into reading clusters.
func (e *Extractor) ClusterArticles(visits []activity.ScoredVisit) []activity.ArticleCluster {
	return e.clusters.Cluster(visits)
}

// BuildTaskSessions groups conversation turns into task sessions.
func (e *Extractor) BuildTaskSessions(turns []activity.ConversationTurn) []activity.TaskSession {
	return e.tasks.Build(turns)
}

// AssembleMissions chains queries into missions and attaches nearby visits.
func (e *Extractor) AssembleMissions(queries []activity.SearchQuery, visits []activity.Visit) []activity.SearchMission {
	return e.missions.Assemble(queries, visits)
}

// FuseSessions is reserved for merging the other groupings by temporal and
// topical overlap. No fusion algorithm exists yet, so it always returns an
// empty slice.
func (e *Extractor) FuseSessions(
	_ []activity.ArticleCluster,
	_ []activity.TaskSession,
	_ []activity.SearchMission,
	_ []activity.CommitWorkUnit,
) []activity.UnifiedTaskSession {
	return []activity.UnifiedTaskSession{}
}

// Extract runs every engine over one day of input.
func (e *Extractor) Extract(in DayInput) Digest {
	start := time.Now()

	scored := make([]activity.ScoredVisit, len(in.Visits))
	plain := make([]activity.Visit, len(in.Visits))
	for i, v := range in.Visits {
		v.Domain = helpers.FillDomain(v.URL, v.Domain)
		if strings.TrimSpace(v.CleanedTitle) == "" {
			v.CleanedTitle = helpers.CleanTitle(v.Title)
		}
		scored[i] = v
		plain[i] = v.Visit
	}

	out := Digest{
		Date:           in.Date,
		Clusters:       e.ClusterArticles(scored),
		TaskSessions:   e.BuildTaskSessions(in.Turns),
		SearchMissions: e.AssembleMissions(in.Queries, plain),
	}
	out.Unified = e.FuseSessions(out.Clusters, out.TaskSessions, out.SearchMissions, in.Commits)

	took := time.Since(start)
	sizes := make([]int, len(out.Clusters))
	for i, c := range out.Clusters {
		sizes[i] = len(c.Articles)
	}
	e.metrics.ObserveExtraction(sizes, len(out.TaskSessions), len(out.SearchMissions), took)
	e.logger.Printf("digest %s: %d visits -> %d clusters, %d turns -> %d sessions, %d queries -> %d missions (%s)",
		dateOrDash(in.Date), len(in.Visits), len(out.Clusters), len(in.Turns), len(out.TaskSessions),
		len(in.Queries), len(out.SearchMissions), took.Round(time.Microsecond))
	return out
}

func dateOrDash(d string) string {
	if d == "" {
		return "-"
	}
	return d
}
