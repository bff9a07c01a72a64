package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported MIME types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if ingestService == nil {
			return errors.New("ingest service not configured")
		}
		for _, mt := range ingestService.SupportedMIMETypes() {
			cmd.Println(mt)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
