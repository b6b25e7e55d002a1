package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bryanchriswhite/toplevelmon/internal/catalog"
	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List installed applications",
	Long: `Scan the application descriptor directories once and print the
catalog the daemon would build. No compositor connection is made.`,
	Example: `  # List applications in table format (default)
  toplevelmon query

  # List applications in JSON format
  toplevelmon query --format json

  # Scan a single directory
  toplevelmon query --app-dir ./applications`,
	RunE: runQuery,
}

var queryFormat string

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "table", "output format (table or json)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	descriptors := catalog.NewBuilder(cfg.ApplicationDirs, cfg.DescriptorSuffix, nil).Scan()
	return printDescriptors(os.Stdout, descriptors, queryFormat)
}

func printDescriptors(w io.Writer, descriptors []catalog.Descriptor, format string) error {
	switch format {
	case "json":
		if descriptors == nil {
			descriptors = []catalog.Descriptor{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(descriptors)
	case "table":
		return printDescriptorTable(w, descriptors)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", format)
	}
}

func printDescriptorTable(out io.Writer, descriptors []catalog.Descriptor) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "APPID\tNAME\tEXEC\tACTIONS")
	fmt.Fprintln(w, "-----\t----\t----\t-------")

	for _, d := range descriptors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.AppID, d.Name, d.Exec, len(d.Actions))
	}

	return w.Flush()
}
