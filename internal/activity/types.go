// Package activity holds the records a day digest is built from and the
// groupings the semantic engines produce from them.
package activity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// digestNamespace seeds the deterministic IDs of clusters, sessions and missions.
var digestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://daydigest.local/semantic"))

// TimeRange is an inclusive span of activity.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End-Start, or zero when either bound is missing.
func (r TimeRange) Duration() time.Duration {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Visit is one browser history entry. A zero Timestamp means the collector
// could not determine when the visit happened.
type Visit struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Timestamp  time.Time `json:"timestamp"`
	Domain     string    `json:"domain,omitempty"`
	VisitCount int       `json:"visit_count,omitempty"`
}

// ScoredVisit joins a visit with its cleaned title and engagement score so
// the three never travel as separate, index-aligned slices.
type ScoredVisit struct {
	Visit
	CleanedTitle string  `json:"cleaned_title"`
	Engagement   float64 `json:"engagement"`
}

// ZipVisits builds ScoredVisits from parallel slices produced by older
// collectors. It fails when the slices disagree in length.
func ZipVisits(visits []Visit, titles []string, scores []float64) ([]ScoredVisit, error) {
	if len(visits) != len(titles) || len(visits) != len(scores) {
		return nil, fmt.Errorf("zip visits: length mismatch (visits=%d titles=%d scores=%d)", len(visits), len(titles), len(scores))
	}
	out := make([]ScoredVisit, len(visits))
	for i := range visits {
		out[i] = ScoredVisit{Visit: visits[i], CleanedTitle: titles[i], Engagement: scores[i]}
	}
	return out, nil
}

// ClusterIntent is the coarse reason a reading cluster exists.
type ClusterIntent string

const (
	IntentResearch       ClusterIntent = "research"
	IntentReference      ClusterIntent = "reference"
	IntentImplementation ClusterIntent = "implementation"
	IntentBrowsing       ClusterIntent = "browsing"
)

// ArticleCluster is a run of thematically similar visits read close together.
type ArticleCluster struct {
	ID              string        `json:"id"`
	Label           string        `json:"label"`
	Articles        []string      `json:"articles"`
	Visits          []Visit       `json:"visits"`
	TimeRange       TimeRange     `json:"time_range"`
	EngagementScore float64       `json:"engagement_score"`
	IntentSignal    ClusterIntent `json:"intent_signal"`
}

// ConversationTurn is one user prompt sent to an AI assistant. TurnCount is
// the collector's hint for the whole conversation; zero means unknown.
type ConversationTurn struct {
	Prompt           string    `json:"prompt"`
	Timestamp        time.Time `json:"timestamp"`
	Project          string    `json:"project,omitempty"`
	ConversationFile string    `json:"conversation_file,omitempty"`
	IsOpener         bool      `json:"is_opener,omitempty"`
	TurnCount        int       `json:"turn_count,omitempty"`
}

// TaskType is the fixed vocabulary returned by task classifiers.
type TaskType string

const (
	TaskImplementation TaskType = "implementation"
	TaskDebugging      TaskType = "debugging"
	TaskRefactoring    TaskType = "refactoring"
	TaskTesting        TaskType = "testing"
	TaskLearning       TaskType = "learning"
	TaskArchitecture   TaskType = "architecture"
	TaskDocumentation  TaskType = "documentation"
	TaskConfiguration  TaskType = "configuration"
	TaskGeneral        TaskType = "general"
)

// IsExploratory reports whether the task type is about building understanding
// rather than getting work done faster.
func (t TaskType) IsExploratory() bool {
	return t == TaskLearning || t == TaskArchitecture
}

// InteractionMode describes how the assistant was used in a session.
type InteractionMode string

const (
	ModeAcceleration InteractionMode = "acceleration"
	ModeExploration  InteractionMode = "exploration"
)

// TaskSession is the set of turns that belong to one conversation file.
type TaskSession struct {
	ID               string             `json:"id"`
	TaskTitle        string             `json:"task_title"`
	TaskType         TaskType           `json:"task_type"`
	TopicCluster     string             `json:"topic_cluster"`
	Prompts          []ConversationTurn `json:"prompts"`
	TimeRange        TimeRange          `json:"time_range"`
	Project          string             `json:"project,omitempty"`
	ConversationFile string             `json:"conversation_file"`
	TurnCount        int                `json:"turn_count"`
	InteractionMode  InteractionMode    `json:"interaction_mode"`
	IsDeepLearning   bool               `json:"is_deep_learning"`
}

// SearchQuery is one query typed into a search engine.
type SearchQuery struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Engine    string    `json:"engine,omitempty"`
}

// SearchIntent classifies what a search mission was after.
type SearchIntent string

const (
	SearchNavigational  SearchIntent = "navigational"
	SearchInformational SearchIntent = "informational"
	SearchTransactional SearchIntent = "transactional"
)

// SearchMission is a chain of related queries plus the pages visited while
// the chain was active.
type SearchMission struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Queries    []SearchQuery `json:"queries"`
	Visits     []Visit       `json:"visits"`
	TimeRange  TimeRange     `json:"time_range"`
	IntentType SearchIntent  `json:"intent_type"`
}

// CommitWorkUnit is a group of commits produced by the git collector.
type CommitWorkUnit struct {
	Repo      string    `json:"repo"`
	Summary   string    `json:"summary"`
	Commits   []string  `json:"commits,omitempty"`
	TimeRange TimeRange `json:"time_range"`
}

// UnifiedTaskSession would merge clusters, task sessions, missions and commit
// work units that overlap in time and topic. Nothing produces it yet.
type UnifiedTaskSession struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	TimeRange        TimeRange `json:"time_range"`
	ClusterIDs       []string  `json:"cluster_ids,omitempty"`
	TaskSessionIDs   []string  `json:"task_session_ids,omitempty"`
	SearchMissionIDs []string  `json:"search_mission_ids,omitempty"`
	CommitRepos      []string  `json:"commit_repos,omitempty"`
}

// StableID derives a deterministic identifier for a grouping from the kind of
// grouping and the fields of its anchor record.
func StableID(kind string, parts ...string) string {
	data := kind
	for _, p := range parts {
		data += "\x00" + p
	}
	return uuid.NewSHA1(digestNamespace, []byte(data)).String()
}

// TimeKey orders timestamps with missing values treated as the Unix epoch.
func TimeKey(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
