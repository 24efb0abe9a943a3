package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/similar/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("similar %s\n", version.Version)
		cmd.Printf("  commit:    %s\n", version.Commit)
		cmd.Printf("  built:     %s\n", version.Date)
		cmd.Printf("  algorithm: %s\n", version.AlgorithmVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
