package tasks

import (
	"fmt"
	"regexp"
	"strings"
)

// TopicRule labels a prompt that matches Pattern.
type TopicRule struct {
	Pattern *regexp.Regexp
	Label   string
}

// CompileTopicRules builds an ordered rule table from pattern/label pairs.
// Patterns are matched case-insensitively.
func CompileTopicRules(pairs [][2]string) ([]TopicRule, error) {
	out := make([]TopicRule, 0, len(pairs))
	for i, p := range pairs {
		pattern, label := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if pattern == "" || label == "" {
			return nil, fmt.Errorf("topic rule %d: pattern and label are required", i)
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("topic rule %d (%s): %w", i, label, err)
		}
		out = append(out, TopicRule{Pattern: re, Label: label})
	}
	return out, nil
}

// DefaultTopicPairs is the built-in developer topic vocabulary.
var DefaultTopicPairs = [][2]string{
	{`\b(react|jsx|tsx|next\.?js|hooks?)\b`, "react"},
	{`\b(vue|nuxt|svelte|angular)\b`, "frontend frameworks"},
	{`\b(css|tailwind|styling|flexbox|grid layout)\b`, "styling"},
	{`\b(golang|goroutines?|go module|go test)\b`, "go"},
	{`\b(rust|cargo|borrow checker|lifetimes?)\b`, "rust"},
	{`\b(python|django|flask|fastapi|pandas)\b`, "python"},
	{`\b(typescript|javascript|node\.?js|npm|deno|bun)\b`, "javascript"},
	{`\b(sql|postgres\w*|mysql|sqlite|database|migrations?|orm)\b`, "database"},
	{`\b(docker|kubernetes|k8s|helm|terraform|container\w*)\b`, "infrastructure"},
	{`\b(ci|github actions|pipeline|deploy\w*)\b`, "ci/cd"},
	{`\b(auth\w*|oauth|jwt|login|session tokens?)\b`, "authentication"},
	{`\b(api|endpoints?|rest|graphql|grpc)\b`, "api"},
	{`\b(llm|prompt\w*|embeddings?|rag|fine-?tun\w*)\b`, "ai"},
	{`\b(tests?|testing|jest|pytest|vitest|coverage)\b`, "testing"},
	{`\b(performance|latency|profil\w*|memory leak|optimi[sz]\w*)\b`, "performance"},
	{`\b(git|rebase|merge conflict|branch\w*)\b`, "git"},
}

// defaultTopicRules is compiled once; the built-in patterns are static.
var defaultTopicRules = mustCompileTopicRules(DefaultTopicPairs)

func mustCompileTopicRules(pairs [][2]string) []TopicRule {
	rules, err := CompileTopicRules(pairs)
	if err != nil {
		panic(err)
	}
	return rules
}

// DefaultTopicRules returns a copy of the built-in rule table.
func DefaultTopicRules() []TopicRule {
	return append([]TopicRule(nil), defaultTopicRules...)
}

// Topic returns the label of the first rule matching prompt, else the first
// three words longer than three characters, else "general".
func Topic(rules []TopicRule, prompt string) string {
	for _, r := range rules {
		if r.Pattern.MatchString(prompt) {
			return r.Label
		}
	}
	var words []string
	for _, w := range strings.Fields(strings.ToLower(prompt)) {
		if len(w) <= 3 {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return "general"
	}
	return strings.Join(words, " ")
}
