package semantic

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mohammad-safakhou/daydigest/internal/activity"
	"github.com/mohammad-safakhou/daydigest/internal/clusters"
	"github.com/mohammad-safakhou/daydigest/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var day = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func sampleDay() DayInput {
	at := func(d time.Duration) time.Time { return day.Add(d) }
	return DayInput{
		Date: "2026-10-19",
		Visits: []activity.ScoredVisit{
			{Visit: activity.Visit{URL: "https://www.doc.rust-lang.org/book/ch04", Title: "Rust ownership rules", Timestamp: at(0)}, CleanedTitle: "Rust ownership rules", Engagement: 0.75},
			{Visit: activity.Visit{URL: "https://blog.example.com/borrowing", Title: "Rust ownership borrowing", Timestamp: at(5 * time.Minute)}, CleanedTitle: "Rust ownership borrowing", Engagement: 0.75},
			{Visit: activity.Visit{URL: "https://pizza.example/nyc", Title: "Best pizza in NYC", Timestamp: at(3 * time.Hour)}, CleanedTitle: "Best pizza in NYC", Engagement: 0.2},
		},
		Turns: []activity.ConversationTurn{
			{Prompt: "Explain how borrow checking works", Timestamp: at(10 * time.Minute), ConversationFile: "a.jsonl", IsOpener: true},
			{Prompt: "and lifetimes?", Timestamp: at(12 * time.Minute), ConversationFile: "a.jsonl"},
			{Prompt: "fix the failing build", Timestamp: at(2 * time.Hour), ConversationFile: "b.jsonl"},
		},
		Queries: []activity.SearchQuery{
			{Query: "rust ownership", Timestamp: at(-time.Minute)},
			{Query: "rust ownership rules", Timestamp: at(time.Minute)},
			{Query: "best pizza nyc", Timestamp: at(3 * time.Hour)},
		},
		Commits: []activity.CommitWorkUnit{{Repo: "daydigest", Summary: "wire extractor"}},
	}
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestExtract(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ex := NewExtractor(Options{Logger: log.New(&buf, "", 0)})
	got := ex.Extract(sampleDay())

	if got.Date != "2026-10-19" {
		t.Fatalf("unexpected date %q", got.Date)
	}
	if len(got.Clusters) != 1 || len(got.Clusters[0].Articles) != 2 {
		t.Fatalf("expected one 2-article cluster, got %+v", got.Clusters)
	}
	if got.Clusters[0].Visits[0].Domain != "doc.rust-lang.org" {
		t.Fatalf("expected derived domain, got %q", got.Clusters[0].Visits[0].Domain)
	}
	if len(got.TaskSessions) != 2 || got.TaskSessions[0].ConversationFile != "b.jsonl" {
		t.Fatalf("unexpected task sessions %+v", got.TaskSessions)
	}
	if len(got.SearchMissions) != 2 {
		t.Fatalf("expected 2 missions, got %d", len(got.SearchMissions))
	}
	if n := len(got.SearchMissions[0].Visits); n != 2 {
		t.Fatalf("expected 2 visits attached to the first mission, got %d", n)
	}
	if got.Unified == nil || len(got.Unified) != 0 {
		t.Fatalf("fusion must return an empty collection, got %#v", got.Unified)
	}
	if !strings.Contains(buf.String(), "digest 2026-10-19: 3 visits -> 1 clusters") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}

func TestExtractDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	in := sampleDay()
	NewExtractor(Options{Logger: quietLogger()}).Extract(in)
	if in.Visits[0].Domain != "" {
		t.Fatalf("input visit was mutated: %+v", in.Visits[0])
	}
}

func TestExtractZeroEngagementKeepsEveryVisit(t *testing.T) {
	t.Parallel()
	in := sampleDay()
	in.Visits = append(in.Visits, activity.ScoredVisit{
		Visit:        activity.Visit{URL: "https://pizza.example/brooklyn", Title: "Best pizza in Brooklyn", Timestamp: day.Add(3*time.Hour + 5*time.Minute)},
		CleanedTitle: "Best pizza in Brooklyn",
		Engagement:   0.1,
	})
	if got := NewExtractor(Options{Logger: quietLogger()}).Extract(in); len(got.Clusters) != 1 {
		t.Fatalf("default threshold should drop the pizza visits, got %d clusters", len(got.Clusters))
	}
	copts := clusters.DefaultOptions()
	copts.EngagementThreshold = 0
	got := NewExtractor(Options{Clusters: &copts, Logger: quietLogger()}).Extract(in)
	if len(got.Clusters) != 2 {
		t.Fatalf("zero threshold should keep the pizza visits, got %d clusters", len(got.Clusters))
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(Options{Logger: quietLogger()})
	a := ex.Extract(sampleDay())
	b := ex.Extract(sampleDay())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("extract not deterministic (-a +b):\n%s", diff)
	}
}

func TestExtractEmptyDay(t *testing.T) {
	t.Parallel()
	got := NewExtractor(Options{Logger: quietLogger()}).Extract(DayInput{})
	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"clusters":[],"task_sessions":[],"search_missions":[],"unified":[]}`
	if string(raw) != want {
		t.Fatalf("empty digest JSON = %s, want %s", raw, want)
	}
}

func TestExtractRecordsMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg, "semantic_test")
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	NewExtractor(Options{Logger: quietLogger(), Metrics: m}).Extract(sampleDay())
	n, err := testutil.GatherAndCount(reg, "semantic_test_extractions_total")
	if err != nil || n != 1 {
		t.Fatalf("expected extraction counter to be exported, n=%d err=%v", n, err)
	}
	if err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP semantic_test_search_missions_total Search missions assembled from query chains.
# TYPE semantic_test_search_missions_total counter
semantic_test_search_missions_total 2
`), "semantic_test_search_missions_total"); err != nil {
		t.Fatalf("unexpected mission counter: %v", err)
	}
}

func TestDayInputJSON(t *testing.T) {
	t.Parallel()
	raw := `{"date":"2026-10-19","visits":[{"url":"https://a.example/x","title":"A","timestamp":"2026-10-19T09:00:00Z","cleaned_title":"a title","engagement":0.8}],"turns":[{"prompt":"p","conversation_file":"f","is_opener":true,"turn_count":3}],"queries":[{"query":"q"}]}`
	var in DayInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Visits[0].URL != "https://a.example/x" || in.Visits[0].CleanedTitle != "a title" || in.Visits[0].Engagement != 0.8 {
		t.Fatalf("unexpected visit %+v", in.Visits[0])
	}
	if !in.Turns[0].Timestamp.IsZero() || in.Turns[0].TurnCount != 3 || !in.Turns[0].IsOpener {
		t.Fatalf("unexpected turn %+v", in.Turns[0])
	}
}

func TestExtractDerivesMissingCleanedTitles(t *testing.T) {
	t.Parallel()
	in := DayInput{Visits: []activity.ScoredVisit{
		{Visit: activity.Visit{URL: "https://a.example/1", Title: "<b>Postgres</b> vacuum tuning - Acme Blog", Timestamp: day}, Engagement: 0.9},
		{Visit: activity.Visit{URL: "https://b.example/2", Title: "Postgres vacuum internals | Docs", Timestamp: day.Add(time.Minute)}, Engagement: 0.9},
	}}
	got := NewExtractor(Options{Logger: quietLogger()}).Extract(in)
	if len(got.Clusters) != 1 {
		t.Fatalf("expected derived titles to cluster, got %+v", got.Clusters)
	}
	want := []string{"Postgres vacuum tuning", "Postgres vacuum internals"}
	if diff := cmp.Diff(want, got.Clusters[0].Articles); diff != "" {
		t.Fatalf("articles mismatch (-want +got):\n%s", diff)
	}
}
