package cmd

import (
	"fmt"
	"os"

	"partyfm/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "partyfm",
	Short: "PartyFM is a party music discovery engine.",
	Long: `PartyFM indexes a local music library, blends local and YouTube
search for party guests, and learns the party's taste from what gets queued.
Running it with no subcommand starts the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
