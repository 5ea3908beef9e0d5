// Package respond builds reply text for classified items by combining
// extracted topics, retrieved knowledge documents, and fixed templates.
// Synthesis is a deterministic template fill: no network calls, no model
// inference.
package respond

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"mailflow/internal/config"
	"mailflow/internal/knowledge"
	"mailflow/internal/types"
)

const (
	// resultsPerTopic caps each per-topic index query.
	resultsPerTopic = 3
	// maxKnowledgeDocs caps the merged document list.
	maxKnowledgeDocs = 5
	// maxIssues caps the issue list in the empathetic variant.
	maxIssues = 3
	// previewLen is the supplementary snippet truncation length.
	previewLen = 100
)

var productPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+\b`)

// issuePatterns extract "cannot X" style phrases from negative messages.
// Each pattern captures the complaint text up to sentence punctuation.
var issuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(cannot|can't|couldn't)\s+(.+?)[.!?]`),
	regexp.MustCompile(`(?i)(having trouble|struggling with)\s+(.+?)[.!?]`),
	regexp.MustCompile(`(?i)(issue with|problem with|error with)\s+(.+?)[.!?]`),
	regexp.MustCompile(`(?i)(not working|broken|failed)\s+(.+?)[.!?]`),
}

// Synthesizer composes replies against a knowledge index. The topic
// vocabulary and templates are injected at construction; instances are safe
// for concurrent use.
type Synthesizer struct {
	index     knowledge.Index
	topics    []string
	templates config.TemplatesConfig
	logger    *zap.Logger
}

// NewSynthesizer builds a synthesizer over the given index.
func NewSynthesizer(index knowledge.Index, vocab config.VocabularyConfig, templates config.TemplatesConfig, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		index:     index,
		topics:    vocab.Topics,
		templates: templates,
		logger:    logger,
	}
}

// Synthesize produces the standard reply variant: greeting by sentiment, the
// top-ranked knowledge document as the primary answer, up to two more as
// supplementary bullet lines, then the fixed footer and signature.
func (s *Synthesizer) Synthesize(subject, body string, sentiment types.Sentiment, extracted types.ExtractedInfo) string {
	topics := s.ExtractTopics(subject, body)
	docs := s.retrieve(topics)

	s.logger.Debug("Synthesizing standard response",
		zap.Int("topics", len(topics)),
		zap.Int("documents", len(docs)))

	var b strings.Builder
	b.WriteString(s.templates.Greeting)

	switch sentiment {
	case types.SentimentNegative:
		b.WriteString(s.templates.NegativeOpener)
	case types.SentimentPositive:
		b.WriteString(s.templates.PositiveOpener)
	}

	if len(docs) > 0 {
		primary := docs[0]
		fmt.Fprintf(&b, "Regarding your inquiry about %s:\n\n", strings.ToLower(primary.Title))
		b.WriteString(primary.Content)
		b.WriteString("\n\n")

		if len(docs) > 1 {
			b.WriteString("Additionally, you might find the following information helpful:\n")
			for _, doc := range docs[1:min(len(docs), 3)] {
				fmt.Fprintf(&b, "- %s: %s...\n", doc.Title, truncate(doc.Content, previewLen))
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(s.templates.NoKnowledge)
	}

	b.WriteString(s.templates.Footer)
	b.WriteString(s.templates.Signature)
	return b.String()
}

// SynthesizeEmpathetic produces the apology-first variant used for negative
// sentiment: it lists extracted issue phrases, states the case is being
// escalated, and omits the knowledge-snippet structure. For any other
// sentiment it falls back to the standard variant, so the variant choice is
// entirely determined by sentiment.
func (s *Synthesizer) SynthesizeEmpathetic(subject, body string, sentiment types.Sentiment, extracted types.ExtractedInfo) string {
	if sentiment != types.SentimentNegative {
		return s.Synthesize(subject, body, sentiment, extracted)
	}

	issues := ExtractIssues(body)
	s.logger.Debug("Synthesizing empathetic response", zap.Int("issues", len(issues)))

	var b strings.Builder
	b.WriteString(s.templates.Greeting)
	b.WriteString(s.templates.EmpatheticOpener)

	if len(issues) > 0 {
		b.WriteString("I can see that you're dealing with the following issues:\n")
		for _, issue := range issues[:min(len(issues), maxIssues)] {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}

	b.WriteString(s.templates.EmpatheticEscalation)
	b.WriteString(s.templates.EmpatheticFooter)
	b.WriteString(s.templates.EmpatheticClosing)
	b.WriteString(s.templates.Signature)
	return b.String()
}

// ExtractTopics returns the topic keywords found in subject and body: fixed
// vocabulary hits first, then all-caps product tokens, deduplicated
// preserving first-seen order so retrieval is deterministic.
func (s *Synthesizer) ExtractTopics(subject, body string) []string {
	text := strings.ToLower(subject + " " + body)

	topics := make([]string, 0)
	for _, topic := range s.topics {
		if strings.Contains(text, topic) {
			topics = append(topics, topic)
		}
	}
	topics = append(topics, productPattern.FindAllString(subject+" "+body, -1)...)

	seen := make(map[string]bool, len(topics))
	unique := topics[:0]
	for _, topic := range topics {
		if !seen[topic] {
			seen[topic] = true
			unique = append(unique, topic)
		}
	}
	return unique
}

// retrieve queries the index once per topic, merges the results
// deduplicated by document id in first-seen order, and caps the list.
func (s *Synthesizer) retrieve(topics []string) []types.Document {
	seen := make(map[string]bool)
	merged := make([]types.Document, 0)

	for _, topic := range topics {
		for _, doc := range s.index.Search(topic, "", resultsPerTopic) {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			merged = append(merged, doc)
		}
	}

	if len(merged) > maxKnowledgeDocs {
		merged = merged[:maxKnowledgeDocs]
	}
	return merged
}

// ExtractIssues pulls complaint phrases out of a message body using the
// fixed issue patterns. The returned phrases are the captured complaint
// text, trimmed.
func ExtractIssues(body string) []string {
	issues := make([]string, 0)
	for _, pattern := range issuePatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			if len(match) > 2 {
				issues = append(issues, strings.TrimSpace(match[2]))
			}
		}
	}
	return issues
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
