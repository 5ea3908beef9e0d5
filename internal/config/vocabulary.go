package config

// VocabularyConfig holds the keyword lists driving classification and topic
// extraction. The lists are injected into components at construction so tests
// can run parallel instances with different vocabularies; there is no shared
// mutable global state.
type VocabularyConfig struct {
	// Positive and Negative drive sentiment scoring over the item body.
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`

	// Urgent drives the binary priority decision over subject plus body.
	// Any match is sufficient; order does not affect the outcome.
	Urgent []string `yaml:"urgent"`

	// Topics is the fixed vocabulary for response topic extraction.
	Topics []string `yaml:"topics"`
}

func (v *VocabularyConfig) applyDefaults() {
	if len(v.Positive) == 0 {
		v.Positive = []string{
			"thank", "thanks", "appreciate", "great", "excellent", "good",
			"wonderful", "fantastic", "amazing", "pleased", "satisfied",
			"happy", "delighted", "grateful", "awesome", "brilliant",
		}
	}
	if len(v.Negative) == 0 {
		v.Negative = []string{
			"angry", "frustrated", "disappointed", "upset", "annoyed",
			"disgusted", "hate", "terrible", "awful", "horrible",
			"bad", "worst", "unhappy", "dissatisfied", "furious",
			"problem", "issue", "error", "broken", "failed", "cannot",
			"can't", "won't", "don't", "doesn't", "didn't",
		}
	}
	if len(v.Urgent) == 0 {
		v.Urgent = []string{
			"immediately", "urgent", "asap", "as soon as possible",
			"critical", "emergency", "important", "hurry", "quick",
			"fast", "soon", "now", "instantly", "right away",
			"cannot access", "can't access", "blocked", "down",
			"crash", "crashed", "broken", "failure", "failed",
			"outage", "downtime", "offline", "unavailable",
		}
	}
	if len(v.Topics) == 0 {
		v.Topics = []string{
			"account", "login", "password", "verification", "billing",
			"payment", "subscription", "api", "integration", "refund",
			"access", "error", "issue", "problem", "help", "support",
		}
	}
}
