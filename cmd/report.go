package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rakivo/stalkr/internal/todomodel"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

// reportCmd files a GitHub issue for each untagged TODO the user selects
// and stamps its issue number back into the source. It is also what the
// root command runs when invoked with no subcommand.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "File issues for untagged TODO comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(todomodel.ModeReporting)
	},
}
