package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rakivo/stalkr/internal/todomodel"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

// listCmd prints every TODO under the scanned directory without
// contacting a tracker.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List TODO comments without filing or purging anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(todomodel.ModeListing)
	},
}
