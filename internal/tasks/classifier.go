package tasks

import (
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
)

// Classification is what a classifier derives from a conversation opener.
type Classification struct {
	Title string
	Type  activity.TaskType
}

// Classifier maps an opening prompt to a task title and type.
type Classifier interface {
	Classify(prompt string) Classification
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(prompt string) Classification

// Classify calls f(prompt).
func (f ClassifierFunc) Classify(prompt string) Classification { return f(prompt) }

type typeRule struct {
	re   *regexp.Regexp
	kind activity.TaskType
}

// typeRules are checked in order; the first match wins.
var typeRules = []typeRule{
	{regexp.MustCompile(`(?i)\b(error|bug|fix|broken|crash(es|ing)?|fails?|failing|stack ?trace|panic|exception|debug)\b`), activity.TaskDebugging},
	{regexp.MustCompile(`(?i)\b(explain|understand|what is|what are|how does|how do|why does|teach|learn|difference between)\b`), activity.TaskLearning},
	{regexp.MustCompile(`(?i)\b(architecture|design|system design|trade-?offs?|scalab\w*|structure the|approach for)\b`), activity.TaskArchitecture},
	{regexp.MustCompile(`(?i)\b(refactor\w*|clean ?up|simplify|rename|extract (a |the )?(function|method|component))\b`), activity.TaskRefactoring},
	{regexp.MustCompile(`(?i)\b(tests?|unit test|coverage|mock\w*|spec)\b`), activity.TaskTesting},
	{regexp.MustCompile(`(?i)\b(readme|docs?|documentation|docstring|comment(s)?)\b`), activity.TaskDocumentation},
	{regexp.MustCompile(`(?i)\b(config\w*|setup|set up|install\w*|deploy\w*|docker\w*|ci|pipeline|env(ironment)? var\w*)\b`), activity.TaskConfiguration},
	{regexp.MustCompile(`(?i)\b(implement\w*|add|build|create|write|make|generate)\b`), activity.TaskImplementation},
}

const maxTitleLen = 60

// KeywordClassifier is a rule-based Classifier for hosts that have no model
// based classifier wired in.
type KeywordClassifier struct{}

// Classify assigns the first matching task type and titles the task with the
// first sentence of the prompt.
func (KeywordClassifier) Classify(prompt string) Classification {
	kind := activity.TaskGeneral
	for _, r := range typeRules {
		if r.re.MatchString(prompt) {
			kind = r.kind
			break
		}
	}
	return Classification{Title: titleFrom(prompt), Type: kind}
}

func titleFrom(prompt string) string {
	title := strings.Join(strings.Fields(prompt), " ")
	if i := strings.IndexAny(title, ".?!\n"); i > 0 {
		title = title[:i]
	}
	if len(title) > maxTitleLen {
		cut := strings.LastIndexByte(title[:maxTitleLen], ' ')
		if cut <= 0 {
			cut = maxTitleLen
		}
		title = strings.TrimSpace(title[:cut]) + "..."
	}
	if title == "" {
		return "Untitled task"
	}
	return title
}
