package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP upload endpoint",
	Long: `Serve the ingestion pipeline over HTTP.

Endpoints:
  POST /v1/documents  upload a document (multipart "file" part or raw body)
  GET  /v1/formats    list supported MIME types
  GET  /healthz       liveness check

Rejected uploads return 415 (unsupported type), 422 (unparseable or too
little text) or 413 (over the upload limit).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(ingestService,
		httpapi.WithAddr(addr),
		httpapi.WithMaxUploadBytes(settings.Extraction.MaxUploadBytes),
	)
	cmd.Printf("%s %s\n", styles.Title.Render("sercha-ingest"), styles.Muted.Render("listening on "+addr))
	return srv.Serve(ctx)
}
