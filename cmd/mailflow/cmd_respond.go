package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mailflow/internal/classify"
	"mailflow/internal/types"
)

var (
	respondSubject string
	respondBody    string
	respondSeed    string
)

// respondCmd runs the full classify-then-synthesize path for one message and
// prints the draft reply, without enqueueing or persisting anything.
var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Draft a reply for a single message",
	Long: `Classifies one message and prints the reply the pipeline would
draft for it. Negative sentiment selects the empathetic variant, anything
else the standard knowledge-backed variant. Reads the body from stdin when
--body is not given.`,
	RunE: runRespond,
}

func init() {
	respondCmd.Flags().StringVarP(&respondSubject, "subject", "s", "", "Message subject")
	respondCmd.Flags().StringVarP(&respondBody, "body", "m", "", "Message body (default: read stdin)")
	respondCmd.Flags().StringVar(&respondSeed, "seed", "", "Knowledge seed YAML file (defaults to built-in corpus)")
}

func runRespond(cmd *cobra.Command, args []string) error {
	body, err := bodyOrStdin(respondBody)
	if err != nil {
		return err
	}

	_, _, engine, synth, err := buildPipeline(respondSeed)
	if err != nil {
		return err
	}

	result := engine.Classify(respondSubject, body)
	var content string
	if result.Sentiment == types.SentimentNegative {
		content = synth.SynthesizeEmpathetic(respondSubject, body, result.Sentiment, result.Extracted)
	} else {
		content = synth.Synthesize(respondSubject, body, result.Sentiment, result.Extracted)
	}

	fmt.Printf("--- sentiment=%s urgency=%s products=%v ---\n\n",
		result.Sentiment, result.Urgency, result.Extracted[classify.KeyProducts])
	fmt.Println(content)
	return nil
}
