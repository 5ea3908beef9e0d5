package knowledge

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mailflow/internal/types"
)

// seedDoc mirrors types.Document minus the id, which is assigned on load.
type seedDoc struct {
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// seedFile is the YAML schema of a knowledge seed file.
type seedFile struct {
	Documents []seedDoc `yaml:"documents"`
}

// SeedDefaults loads the built-in corpus of common support answers into the
// index. Called when no seed file is configured.
func SeedDefaults(ix *MemoryIndex) {
	for _, doc := range defaultCorpus() {
		ix.Add(doc.Title, doc.Content, doc.Category, doc.Tags)
	}
}

// LoadSeedFile replaces the index contents with the documents in a YAML seed
// file. The whole set is swapped at once so concurrent searches never see a
// partially loaded corpus.
func LoadSeedFile(ix *MemoryIndex, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	docs := make([]types.Document, 0, len(sf.Documents))
	for _, sd := range sf.Documents {
		docs = append(docs, types.Document{
			ID:       uuid.NewString(),
			Title:    sd.Title,
			Content:  sd.Content,
			Category: sd.Category,
			Tags:     sd.Tags,
		})
	}

	ix.replaceAll(docs)
	return len(docs), nil
}

// defaultCorpus is the stock set of support answers shipped with the
// pipeline.
func defaultCorpus() []seedDoc {
	return []seedDoc{
		{
			Title:    "Account Login Issues",
			Content:  "If you're unable to log into your account, try resetting your password. Click 'Forgot Password' on the login page and follow the instructions sent to your email.",
			Category: "Account Management",
			Tags:     []string{"login", "account", "password"},
		},
		{
			Title:    "Password Reset Process",
			Content:  "To reset your password: 1) Go to the login page and click 'Forgot Password', 2) Enter your email address, 3) Check your email for a password reset link, 4) Click the link and enter a new password.",
			Category: "Account Management",
			Tags:     []string{"password", "reset", "account"},
		},
		{
			Title:    "Billing Issues",
			Content:  "For billing issues, please contact our billing department at billing@company.com or call 1-800-123-4567.",
			Category: "Billing",
			Tags:     []string{"billing", "payment", "invoice"},
		},
		{
			Title:    "System Downtime and Outages",
			Content:  "We strive for 99.9% uptime. If you're experiencing system issues, check our status page at status.company.com for current outages. For urgent issues, contact support with details about the problem.",
			Category: "Technical Support",
			Tags:     []string{"downtime", "outage", "system", "error"},
		},
		{
			Title:    "API Integration Support",
			Content:  "For API integration questions, refer to our developer documentation at docs.company.com. Common integration issues include authentication errors, rate limiting, and incorrect endpoint usage.",
			Category: "Developer Support",
			Tags:     []string{"api", "integration", "developer", "documentation"},
		},
	}
}
