package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import YAML item files into the catalog",
	Long: `Reads every .yaml/.yml file under dir (default: content.dir from the config)
and writes the items it defines. Files that fail to decode are reported and
skipped. The import flushes the result cache.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	dir := a.Config.Content.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no directory given and content.dir is not configured")
	}

	n, err := a.Importer.ImportDir(cmd.Context(), dir)
	cmd.Printf("Imported %d items from %s.\n", n, dir)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
