package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailflow/internal/config"
	"mailflow/internal/types"
)

func newTestEngine() *Engine {
	return NewEngine(config.Default().Vocabulary)
}

func TestAnalyzeSentiment(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name string
		body string
		want types.Sentiment
	}{
		{
			name: "positive keywords dominate",
			body: "Thank you for the great service, I really appreciate it.",
			want: types.SentimentPositive,
		},
		{
			name: "negative keywords dominate",
			body: "I am frustrated and angry, this is a terrible problem.",
			want: types.SentimentNegative,
		},
		{
			name: "no keywords is neutral",
			body: "Please update my mailing address.",
			want: types.SentimentNeutral,
		},
		{
			name: "equal counts tie to neutral",
			body: "The service was great but the billing is broken.",
			want: types.SentimentNeutral,
		},
		{
			name: "empty body is neutral",
			body: "",
			want: types.SentimentNeutral,
		},
		{
			name: "repeated keyword counts once",
			body: "broken broken broken, but the docs are great and the team is excellent",
			want: types.SentimentPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.AnalyzeSentiment(tt.body))
		})
	}
}

func TestDetermineUrgency(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name    string
		subject string
		body    string
		want    types.Urgency
	}{
		{
			name:    "keyword in subject",
			subject: "Urgent: Cannot access account",
			body:    "Please help me get back in.",
			want:    types.UrgencyUrgent,
		},
		{
			name:    "keyword in body only",
			subject: "Login question",
			body:    "The whole system is down for my team.",
			want:    types.UrgencyUrgent,
		},
		{
			name:    "no keywords",
			subject: "Feature request",
			body:    "It would be nice to export reports as CSV.",
			want:    types.UrgencyNotUrgent,
		},
		{
			name:    "case insensitive",
			subject: "EMERGENCY",
			body:    "",
			want:    types.UrgencyUrgent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DetermineUrgency(tt.subject, tt.body))
		})
	}
}

func TestExtractInfo(t *testing.T) {
	engine := newTestEngine()

	body := "My phone is 555-123-4567 and you can reach me at bob@example.com. " +
		"The API and the SDK are both great."
	info := engine.ExtractInfo(body)

	assert.Equal(t, []string{"555-123-4567"}, info[KeyPhones])
	assert.Equal(t, []string{"bob@example.com"}, info[KeyEmails])
	assert.Equal(t, []string{"API", "SDK"}, info[KeyProducts])

	indicators, ok := info[KeyIndicators].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, indicators["positive"], "great")
	assert.Empty(t, indicators["negative"])
}

func TestExtractInfoEmptyBody(t *testing.T) {
	engine := newTestEngine()

	info := engine.ExtractInfo("")

	// Absent matches yield empty lists, never nil, so downstream JSON
	// encodes [] instead of null.
	assert.Equal(t, []string{}, info[KeyPhones])
	assert.Equal(t, []string{}, info[KeyEmails])
	assert.Equal(t, []string{}, info[KeyProducts])
}

func TestClassifySubjectDoesNotAffectSentiment(t *testing.T) {
	engine := newTestEngine()

	result := engine.Classify("This is terrible and awful", "Please renew my subscription.")
	assert.Equal(t, types.SentimentNeutral, result.Sentiment)
}

func TestClassifyDeterministic(t *testing.T) {
	engine := newTestEngine()

	subject := "Urgent: Cannot access account"
	body := "I cannot access my account and I am very frustrated. Call 555-123-4567."

	first := engine.Classify(subject, body)
	second := engine.Classify(subject, body)

	assert.Equal(t, types.SentimentNegative, first.Sentiment)
	assert.Equal(t, types.UrgencyUrgent, first.Urgency)
	assert.Equal(t, first, second)
}

func TestCustomVocabulary(t *testing.T) {
	engine := NewEngine(config.VocabularyConfig{
		Positive: []string{"stellar"},
		Negative: []string{"rubbish"},
		Urgent:   []string{"mayday"},
	})

	assert.Equal(t, types.SentimentPositive, engine.AnalyzeSentiment("that was stellar"))
	assert.Equal(t, types.SentimentNegative, engine.AnalyzeSentiment("that was rubbish"))
	assert.Equal(t, types.UrgencyUrgent, engine.DetermineUrgency("mayday", ""))
	assert.Equal(t, types.UrgencyNotUrgent, engine.DetermineUrgency("urgent", "asap"))
}
