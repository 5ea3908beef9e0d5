package config

// TemplatesConfig holds the fixed text fragments used by the response
// synthesizer. The reply is a deterministic template fill; no external
// generation call is ever made.
type TemplatesConfig struct {
	Greeting string `yaml:"greeting"`

	// Sentiment-dependent openers for the standard variant.
	NegativeOpener string `yaml:"negative_opener"`
	PositiveOpener string `yaml:"positive_opener"`

	// NoKnowledge is emitted when retrieval finds nothing.
	NoKnowledge string `yaml:"no_knowledge"`

	// Footer and Signature close every reply.
	Footer    string `yaml:"footer"`
	Signature string `yaml:"signature"`

	// Empathetic variant fragments, used only for negative sentiment.
	EmpatheticOpener     string `yaml:"empathetic_opener"`
	EmpatheticEscalation string `yaml:"empathetic_escalation"`
	EmpatheticFooter     string `yaml:"empathetic_footer"`
	EmpatheticClosing    string `yaml:"empathetic_closing"`
}

func (t *TemplatesConfig) applyDefaults() {
	if t.Greeting == "" {
		t.Greeting = "Hello,\n\n"
	}
	if t.NegativeOpener == "" {
		t.NegativeOpener = "I understand you're experiencing some frustration, and I sincerely apologize for any inconvenience this has caused.\n\n"
	}
	if t.PositiveOpener == "" {
		t.PositiveOpener = "Thank you for reaching out to us.\n\n"
	}
	if t.NoKnowledge == "" {
		t.NoKnowledge = "Thank you for your inquiry. We're currently looking into this matter and will get back to you with more detailed information shortly.\n\n"
	}
	if t.Footer == "" {
		t.Footer = "If you need further assistance, please don't hesitate to reach out to our support team at support@company.com or call us at 1-800-123-4567.\n\n"
	}
	if t.Signature == "" {
		t.Signature = "Best regards,\nCustomer Support Team"
	}
	if t.EmpatheticOpener == "" {
		t.EmpatheticOpener = "I'm truly sorry to hear about the difficulties you're experiencing. I completely understand how frustrating this situation must be for you, and I want to assure you that we're taking your concerns seriously.\n\n"
	}
	if t.EmpatheticEscalation == "" {
		t.EmpatheticEscalation = "To help resolve this as quickly as possible, I'm escalating your case to our senior support team. They will personally follow up with you within the next 24 hours.\n\n"
	}
	if t.EmpatheticFooter == "" {
		t.EmpatheticFooter = "In the meantime, if you have any additional questions or concerns, please feel free to reply to this email or contact our priority support line at 1-800-123-4567, extension 9.\n\n"
	}
	if t.EmpatheticClosing == "" {
		t.EmpatheticClosing = "Thank you for your patience and understanding.\n\n"
	}
}
