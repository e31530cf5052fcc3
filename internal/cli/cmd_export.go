package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
	"github.com/rahulmohankumar24/finch-demo/internal/util"
)

// newExportCmd creates the export command
func newExportCmd() *cobra.Command {
	var (
		outputFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every matter and client as one snapshot",
		Long: `Export every matter and client as one snapshot document.

Without --output the snapshot is written to stdout. The format defaults to
the output file's extension (.json or YAML otherwise).

Example:
  finch export -o backup.yaml
  finch export --format json > backup.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := storage.FormatYAML
			if outputFile != "" {
				f = storage.FormatForPath(outputFile)
			}
			if cmd.Flags().Changed("format") {
				parsed, err := storage.ParseFormat(format)
				if err != nil {
					return fincherrors.ErrInvalidInput("format", err.Error())
				}
				f = parsed
			}

			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			snap, err := svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := storage.EncodeSnapshot(snap, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputFile == "" {
				_, err := out.Write(data)
				return err
			}
			if err := util.AtomicWriteFile(outputFile, data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(out, "Exported %d matters and %d clients to %s\n", len(snap.Matters), len(snap.Clients), outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "yaml", "snapshot format: yaml or json")
	return cmd
}
