// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved snapshot to YAML or JSON",
	Long: `Export writes the saved snapshot to export.yaml or export.json in the
store directory, or to --output. With --classify the classification of
every study is included.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := store.ExportOptions{Path: output}
	if withClass, _ := cmd.Flags().GetBool("classify"); withClass {
		records, err := e.store.Load(cmd.Context())
		if err != nil {
			return err
		}
		opts.Classifications = e.catalog.Classify(records)
	}

	var path string
	switch format {
	case "yaml", "":
		path, err = e.store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = e.store.ExportJSON(cmd.Context(), opts)
	default:
		return eris.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("output", "", "output file (default: <store dir>/export.<format>)")
	exportCmd.Flags().Bool("classify", false, "include title classifications")

	rootCmd.AddCommand(exportCmd)
}
