package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/similar/internal/metrics"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every cached ranking",
	RunE:  runFlush,
}

func init() {
	rootCmd.AddCommand(flushCmd)
}

func runFlush(cmd *cobra.Command, _ []string) error {
	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.Similar.Flush(cmd.Context(), metrics.FlushReasonManual); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	cmd.Println("Result cache flushed.")
	return nil
}
