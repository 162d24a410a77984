package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rakivo/stalkr/internal/todomodel"
)

func init() {
	rootCmd.AddCommand(purgeCmd)
}

// purgeCmd removes tagged TODOs whose issue has since been closed.
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove tagged TODO comments whose issue has been closed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(todomodel.ModePurging)
	},
}
