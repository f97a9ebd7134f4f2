// Package tasks turns AI-assistant conversation turns into one task session
// per conversation file.
package tasks

import (
	"sort"
	"strconv"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
)

const (
	// UnknownConversation groups turns that carry no conversation file.
	UnknownConversation = "unknown"
	// DeepLearningTurns is the turn count at which an exploratory session
	// counts as deep learning.
	DeepLearningTurns = 5
)

// Group partitions turns by conversation file. Groups are returned in the
// order their first turn appears; turns keep their input order.
func Group(turns []activity.ConversationTurn) ([]string, map[string][]activity.ConversationTurn) {
	var keys []string
	groups := make(map[string][]activity.ConversationTurn)
	for _, t := range turns {
		key := t.ConversationFile
		if key == "" {
			key = UnknownConversation
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], t)
	}
	return keys, groups
}

// Builder derives task sessions from conversation turns.
type Builder struct {
	classifier Classifier
	topics     []TopicRule
}

// NewBuilder returns a Builder. A nil classifier falls back to
// KeywordClassifier and a nil rule table to DefaultTopicRules.
func NewBuilder(classifier Classifier, topics []TopicRule) *Builder {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if topics == nil {
		topics = DefaultTopicRules()
	}
	return &Builder{classifier: classifier, topics: topics}
}

// Build returns one session per conversation file, most recent first.
func (b *Builder) Build(turns []activity.ConversationTurn) []activity.TaskSession {
	keys, groups := Group(turns)
	out := make([]activity.TaskSession, 0, len(keys))
	for _, key := range keys {
		out = append(out, b.session(key, groups[key]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return activity.TimeKey(out[i].TimeRange.Start) > activity.TimeKey(out[j].TimeRange.Start)
	})
	return out
}

func (b *Builder) session(key string, group []activity.ConversationTurn) activity.TaskSession {
	sorted := append([]activity.ConversationTurn(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return activity.TimeKey(sorted[i].Timestamp) < activity.TimeKey(sorted[j].Timestamp)
	})

	opener := sorted[0]
	for _, t := range sorted {
		if t.IsOpener {
			opener = t
			break
		}
	}

	class := b.classifier.Classify(opener.Prompt)
	turnCount := opener.TurnCount
	if turnCount <= 0 {
		turnCount = len(sorted)
	}
	mode := activity.ModeAcceleration
	if class.Type.IsExploratory() {
		mode = activity.ModeExploration
	}

	return activity.TaskSession{
		ID:               activity.StableID("task", key, strconv.FormatInt(activity.TimeKey(sorted[0].Timestamp), 10)),
		TaskTitle:        class.Title,
		TaskType:         class.Type,
		TopicCluster:     Topic(b.topics, opener.Prompt),
		Prompts:          sorted,
		TimeRange:        activity.TimeRange{Start: sorted[0].Timestamp, End: sorted[len(sorted)-1].Timestamp},
		Project:          opener.Project,
		ConversationFile: key,
		TurnCount:        turnCount,
		InteractionMode:  mode,
		IsDeepLearning:   turnCount >= DeepLearningTurns && class.Type.IsExploratory(),
	}
}
