package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coproconnect/panel/internal/domain/port/driven"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <residents|happix>",
	Short: "Download a PDF export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind driven.ExportKind
		switch args[0] {
		case string(driven.ExportResidents):
			kind = driven.ExportResidents
		case string(driven.ExportHappix):
			kind = driven.ExportHappix
		default:
			return fmt.Errorf("unknown export %q, expected %q or %q",
				args[0], driven.ExportResidents, driven.ExportHappix)
		}

		out := exportOutput
		if out == "" {
			out = fmt.Sprintf("%s.pdf", kind)
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}

		if err := app.client.ExportPDF(cmd.Context(), kind, f); err != nil {
			f.Close()
			os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}

		fmt.Println(color.GreenString("Saved %s.", out))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <kind>.pdf)")
	rootCmd.AddCommand(exportCmd)
}
