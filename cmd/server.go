package cmd

import (
	"partyfm/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the PartyFM server",
	Long:  `Start the HTTP server: search API, playback routes, and the websocket feed for party screens.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
