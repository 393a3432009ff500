package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"partyfm/config"
	"partyfm/core/indexer"
	"partyfm/core/ollama"
	"partyfm/db"
	"partyfm/repository"

	"github.com/spf13/cobra"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check every external dependency of the engine",
	Long: `Probe the music library directory, the database, the Ollama host,
and the YouTube search sidecar, and report what works. Run this before a
party, not during one.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		failures := 0

		// Library directory.
		if info, err := os.Stat(cfg.LibraryPath); err != nil {
			fmt.Printf("[FAIL] Library path %s: %v\n", cfg.LibraryPath, err)
			failures++
		} else if !info.IsDir() {
			fmt.Printf("[FAIL] Library path %s is not a directory\n", cfg.LibraryPath)
			failures++
		} else {
			fmt.Printf("[ OK ] Library path %s\n", cfg.LibraryPath)
		}

		// Database.
		if err := db.ConnectGormDB(cfg); err != nil {
			fmt.Printf("[FAIL] Database %s:%s: %v\n", cfg.DBHost, cfg.DBPort, err)
			failures++
		} else {
			defer db.CloseGormDB()
			count, err := repository.NewMySQLLibraryRepository().Count()
			if err != nil {
				fmt.Printf("[WARN] Database reachable, library table unreadable: %v\n", err)
			} else {
				fmt.Printf("[ OK ] Database %s:%s (%d tracks indexed)\n", cfg.DBHost, cfg.DBPort, count)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Ollama host.
		ollamaClient := ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel)
		if !ollamaClient.Ping(ctx) {
			fmt.Printf("[WARN] Ollama host %s unreachable, query enhancement and embeddings disabled\n", cfg.OllamaHost)
		} else {
			models, err := ollamaClient.ListModels(ctx)
			if err != nil {
				fmt.Printf("[WARN] Ollama host reachable, model list failed: %v\n", err)
			} else {
				fmt.Printf("[ OK ] Ollama host %s (%d models, active: %s)\n",
					cfg.OllamaHost, len(models), ollamaClient.Model())
			}
		}

		// YouTube search sidecar.
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, cfg.YouTubeAPIURL+"/search?q=test&limit=1", nil)
		if resp, err := http.DefaultClient.Do(req); err != nil {
			fmt.Printf("[WARN] YouTube API %s unreachable, external search disabled\n", cfg.YouTubeAPIURL)
		} else {
			resp.Body.Close()
			fmt.Printf("[ OK ] YouTube API %s (HTTP %d)\n", cfg.YouTubeAPIURL, resp.StatusCode)
		}

		// Supported files in the library.
		if files := countSupportedFiles(cfg); files >= 0 {
			fmt.Printf("[ OK ] %d supported audio files under %s\n", files, cfg.LibraryPath)
		}

		if failures > 0 {
			fmt.Printf("%d hard failure(s)\n", failures)
			os.Exit(1)
		}
	},
}

func countSupportedFiles(cfg *config.Config) int {
	ix := indexer.New(cfg, nil, nil)
	return len(ix.Scan())
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}
