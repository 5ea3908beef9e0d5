// Package classify implements keyword and pattern based analysis of inbound
// support messages: sentiment, urgency, and structured field extraction.
// Classification is a pure function of the input text; the engine performs no
// I/O and never fails. Malformed or empty text degrades to neutral,
// not_urgent, and empty extraction lists.
package classify

import (
	"regexp"
	"strings"

	"mailflow/internal/config"
	"mailflow/internal/types"
)

// Extraction field keys.
const (
	KeyPhones     = "phones"
	KeyEmails     = "emails"
	KeyProducts   = "products"
	KeyIndicators = "sentiment_indicators"
)

var (
	phonePattern   = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	emailPattern   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	productPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+\b`)
)

// Classification is the result of one classifier pass.
type Classification struct {
	Sentiment types.Sentiment
	Urgency   types.Urgency
	Extracted types.ExtractedInfo
}

// Engine analyzes message text against an injected vocabulary.
// Construct one per vocabulary; instances are immutable and safe for
// concurrent use.
type Engine struct {
	positive []string
	negative []string
	urgent   []string
}

// NewEngine builds a classifier from the given vocabulary.
func NewEngine(vocab config.VocabularyConfig) *Engine {
	return &Engine{
		positive: lowerAll(vocab.Positive),
		negative: lowerAll(vocab.Negative),
		urgent:   lowerAll(vocab.Urgent),
	}
}

// Classify runs sentiment analysis, urgency detection, and field extraction
// over one message. Deterministic: identical input yields identical output.
func (e *Engine) Classify(subject, body string) Classification {
	return Classification{
		Sentiment: e.AnalyzeSentiment(body),
		Urgency:   e.DetermineUrgency(subject, body),
		Extracted: e.ExtractInfo(body),
	}
}

// AnalyzeSentiment scores the body against the positive and negative keyword
// lists. Each keyword counts at most once regardless of repetition. Ties,
// including zero hits on both sides, are neutral.
func (e *Engine) AnalyzeSentiment(body string) types.Sentiment {
	text := strings.ToLower(body)

	positiveCount := countPresent(text, e.positive)
	negativeCount := countPresent(text, e.negative)

	switch {
	case positiveCount > negativeCount:
		return types.SentimentPositive
	case negativeCount > positiveCount:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

// DetermineUrgency scans subject and body together for urgency keywords.
// Presence of any keyword is sufficient.
func (e *Engine) DetermineUrgency(subject, body string) types.Urgency {
	text := strings.ToLower(subject + " " + body)

	for _, keyword := range e.urgent {
		if strings.Contains(text, keyword) {
			return types.UrgencyUrgent
		}
	}
	return types.UrgencyNotUrgent
}

// ExtractInfo pulls structured fields out of the body: phone numbers, email
// addresses, all-caps product candidates, and which sentiment keywords were
// present. All lists may be empty.
func (e *Engine) ExtractInfo(body string) types.ExtractedInfo {
	info := types.ExtractedInfo{
		KeyPhones:   nonNil(phonePattern.FindAllString(body, -1)),
		KeyEmails:   nonNil(emailPattern.FindAllString(body, -1)),
		KeyProducts: nonNil(productPattern.FindAllString(body, -1)),
	}

	text := strings.ToLower(body)
	indicators := map[string][]string{
		"positive": hitsPresent(text, e.positive),
		"negative": hitsPresent(text, e.negative),
	}
	info[KeyIndicators] = indicators

	return info
}

func countPresent(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}

func hitsPresent(text string, keywords []string) []string {
	hits := make([]string, 0)
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits = append(hits, keyword)
		}
	}
	return hits
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
