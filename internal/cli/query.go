package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/language"
	"github.com/kailas-cloud/similar/internal/domain/options"
	"github.com/kailas-cloud/similar/internal/usecase/similar"
)

var (
	queryFields    []string
	queryThreshold float64
	queryLang      string
	queryNoCache   bool
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query <kind> <id>",
	Short: "List the items similar to one item",
	Long: `Ranks the siblings of an item by shared field values, best first.
Kind is page, file or user. Unset flags fall back to the similar section of the config.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVarP(&queryFields, "fields", "f", nil,
		`fields to compare: "tags", "tags,category" or "tags:2,category:1"`)
	queryCmd.Flags().Float64VarP(&queryThreshold, "threshold", "t", 0, "minimum score to keep a candidate")
	queryCmd.Flags().StringVar(&queryLang, "lang", "", "active language code")
	queryCmd.Flags().BoolVar(&queryNoCache, "no-cache", false, "skip the result cache")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(queryCmd)
}

type queryResult struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	kind, err := item.ParseKind(args[0])
	if err != nil {
		return err
	}

	overrides, err := queryOverrides(cmd)
	if err != nil {
		return err
	}

	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	ctx := language.ContextWithLanguage(cmd.Context(), queryLang)

	loadMemoryContent(cmd, a)

	ref, err := a.Catalog.Get(ctx, kind, args[1])
	if err != nil {
		return err
	}

	items, err := a.Similar.Similar(ctx, similar.Request{Reference: &ref, Overrides: overrides})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		results := make([]queryResult, len(items))
		for i, it := range items {
			results[i] = queryResult{Kind: string(it.Kind()), ID: it.ID()}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		cmd.Println("No similar items found.")
		return nil
	}
	for i, it := range items {
		cmd.Printf("%d. %s\n", i+1, it.ID())
	}
	return nil
}

// queryOverrides maps the flags the user actually set onto option overrides.
func queryOverrides(cmd *cobra.Command) (options.Overrides, error) {
	var ov options.Overrides
	flags := cmd.Flags()
	if flags.Changed("fields") {
		spec, err := fieldspec.ParseEntries(queryFields)
		if err != nil {
			return ov, err
		}
		ov.Fields = &spec
	}
	if flags.Changed("threshold") {
		t := queryThreshold
		ov.Threshold = &t
	}
	if flags.Changed("no-cache") {
		enabled := !queryNoCache
		ov.CacheEnabled = &enabled
	}
	return ov, nil
}
