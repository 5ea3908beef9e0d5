package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mailflow/internal/knowledge"
)

var (
	knowledgeSeed     string
	knowledgeCategory string
	knowledgeLimit    int
)

// knowledgeCmd groups the knowledge index inspection subcommands.
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect the knowledge index",
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge index",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeSearch,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents, categories, and tags",
	RunE:  runKnowledgeList,
}

var knowledgeServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch a seed file and reload the index on change",
	Long: `Loads the given seed file and keeps watching it, reloading the
index whenever the file settles after a change. Intended for iterating on
seed corpora; exits on interrupt.`,
	RunE: runKnowledgeServe,
}

func init() {
	knowledgeCmd.PersistentFlags().StringVar(&knowledgeSeed, "seed", "", "Knowledge seed YAML file (defaults to built-in corpus)")
	knowledgeSearchCmd.Flags().StringVarP(&knowledgeCategory, "category", "c", "", "Restrict to one category")
	knowledgeSearchCmd.Flags().IntVarP(&knowledgeLimit, "limit", "n", 0, "Max results (0 = default)")

	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeServeCmd)
}

func loadIndex() (*knowledge.MemoryIndex, error) {
	index := knowledge.NewMemoryIndex(logger)
	if knowledgeSeed == "" {
		knowledge.SeedDefaults(index)
		return index, nil
	}
	count, err := knowledge.LoadSeedFile(index, knowledgeSeed)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded knowledge seed file",
		zap.String("path", knowledgeSeed),
		zap.Int("documents", count))
	return index, nil
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	index, err := loadIndex()
	if err != nil {
		return err
	}

	docs := index.Search(args[0], knowledgeCategory, knowledgeLimit)
	if len(docs) == 0 {
		fmt.Println("No documents matched.")
		return nil
	}

	for i, doc := range docs {
		fmt.Printf("%d. [%s] %s\n", i+1, doc.Category, doc.Title)
		fmt.Printf("   tags: %s\n", strings.Join(doc.Tags, ", "))
		fmt.Printf("   %s\n\n", doc.Content)
	}
	return nil
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	index, err := loadIndex()
	if err != nil {
		return err
	}

	fmt.Printf("Documents: %d\n", index.Len())
	fmt.Printf("Categories: %s\n", strings.Join(index.Categories(), ", "))
	fmt.Printf("Tags: %s\n", strings.Join(index.Tags(), ", "))
	return nil
}

func runKnowledgeServe(cmd *cobra.Command, args []string) error {
	if knowledgeSeed == "" {
		return fmt.Errorf("--seed is required for serve")
	}

	index, err := loadIndex()
	if err != nil {
		return err
	}

	watcher, err := knowledge.NewSeedWatcher(index, knowledgeSeed, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	logger.Info("Watching seed file", zap.String("path", knowledgeSeed))
	<-ctx.Done()
	return nil
}
