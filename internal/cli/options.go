package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the effective similarity defaults",
	Long: `Prints the options every request starts from after the config is applied,
and the languages the site is configured with.`,
	Args: cobra.NoArgs,
	RunE: runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, _ []string) error {
	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	opts := a.Similar.Defaults()
	cmd.Printf("fields:          %s (%s)\n", formatFields(opts.Fields), opts.Fields.Shape())
	cmd.Printf("threshold:       %g\n", opts.Threshold)
	cmd.Printf("delimiter:       %q\n", opts.Delimiter)
	cmd.Printf("language filter: %s\n", onOff(opts.LanguageFilter))

	ttl := "never expires"
	if opts.CacheTTLMinutes > 0 {
		ttl = fmt.Sprintf("%dm", opts.CacheTTLMinutes)
	}
	cmd.Printf("cache:           %s, ttl %s\n", onOff(opts.CacheEnabled), ttl)

	if codes := a.Languages.Codes(); len(codes) > 0 {
		cmd.Printf("languages:       %s (default %s)\n", strings.Join(codes, ", "), a.Languages.Default())
	} else {
		cmd.Println("languages:       none")
	}
	return nil
}

func formatFields(spec fieldspec.Spec) string {
	fields := spec.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		if spec.Shape() == fieldspec.Weighted {
			parts[i] = fmt.Sprintf("%s:%g", f.Name, f.Weight)
		} else {
			parts[i] = f.Name
		}
	}
	return strings.Join(parts, ", ")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
