package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mailflow/internal/classify"
)

var (
	classifySubject string
	classifyBody    string
	classifyJSON    bool
)

// classifyCmd runs the classifier over a single message without touching the
// queue or any store.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single message",
	Long: `Runs sentiment analysis, urgency detection, and field extraction
over one message and prints the result. Reads the body from stdin when
--body is not given.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifySubject, "subject", "s", "", "Message subject")
	classifyCmd.Flags().StringVarP(&classifyBody, "body", "m", "", "Message body (default: read stdin)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Emit the result as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	body, err := bodyOrStdin(classifyBody)
	if err != nil {
		return err
	}

	engine := classify.NewEngine(cfg.Vocabulary)
	result := engine.Classify(classifySubject, body)

	if classifyJSON {
		out := map[string]interface{}{
			"sentiment": result.Sentiment,
			"urgency":   result.Urgency,
			"extracted": result.Extracted,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Sentiment: %s\n", result.Sentiment)
	fmt.Printf("Urgency:   %s\n", result.Urgency)
	fmt.Printf("Phones:    %v\n", result.Extracted[classify.KeyPhones])
	fmt.Printf("Emails:    %v\n", result.Extracted[classify.KeyEmails])
	fmt.Printf("Products:  %v\n", result.Extracted[classify.KeyProducts])
	return nil
}

// bodyOrStdin returns the flag value, or the whole of stdin when the flag was
// left empty.
func bodyOrStdin(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read body from stdin: %w", err)
	}
	return string(data), nil
}
