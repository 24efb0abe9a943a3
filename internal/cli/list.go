package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/similar/internal/domain/item"
)

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List catalog items of a kind",
	Long:  `Prints the id of every stored item of kind (page, file or user), ordered by id.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := item.ParseKind(args[0])
	if err != nil {
		return err
	}

	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	loadMemoryContent(cmd, a)

	recs, err := a.Catalog.List(cmd.Context(), kind)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		cmd.Printf("No %s items.\n", kind)
		return nil
	}
	for _, rec := range recs {
		cmd.Println(rec.ID())
	}
	return nil
}
