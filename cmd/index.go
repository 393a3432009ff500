package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"partyfm/config"
	"partyfm/core/indexer"
	"partyfm/core/ollama"
	"partyfm/core/search"
	"partyfm/db"
	"partyfm/repository"

	"github.com/spf13/cobra"
)

var (
	indexMaxFiles       int
	indexSkipEmbeddings bool
	indexTestSearch     string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the local music library",
	Long: `Walk the music library, extract metadata from every supported audio
file, and write the results into the search index. Embeddings are generated
when the Ollama host is reachable.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.MigrateModels(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		libraryRepo := repository.NewMySQLLibraryRepository()
		ollamaClient := ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel)
		ix := indexer.New(cfg, libraryRepo, ollamaClient)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		stats, err := ix.IndexLibrary(ctx, indexer.Options{
			MaxFiles:       indexMaxFiles,
			SkipEmbeddings: indexSkipEmbeddings,
		})
		if err != nil {
			log.Fatalf("Index run failed: %v", err)
		}

		fmt.Printf("Indexed %d files: %d succeeded, %d failed\n",
			stats.Total, stats.Success, stats.Failed)

		if indexTestSearch != "" {
			engine := search.NewService(cfg, libraryRepo,
				repository.NewMySQLSearchLogRepository(),
				repository.NewMySQLPatternRepository(),
				repository.NewMySQLQueueRepository(),
				nil, nil, nil)

			fmt.Printf("Search results for %q:\n", indexTestSearch)
			for _, t := range engine.SearchLocal(indexTestSearch, 10) {
				title := t.FilePath
				if t.Title != nil {
					title = *t.Title
				}
				artist := "Unknown"
				if t.Artist != nil {
					artist = *t.Artist
				}
				fmt.Printf("  %s - %s (%s)\n", artist, title, t.URL)
			}
		}
	},
}

func init() {
	indexCmd.Flags().IntVar(&indexMaxFiles, "max-files", 0, "index at most this many files (0 = no limit)")
	indexCmd.Flags().BoolVar(&indexSkipEmbeddings, "skip-embeddings", false, "skip embedding generation")
	indexCmd.Flags().StringVar(&indexTestSearch, "test-search", "", "run a local search after indexing")
	rootCmd.AddCommand(indexCmd)
}
