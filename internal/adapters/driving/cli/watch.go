package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/watch"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

var (
	watchDB         string
	watchCollection string
	watchRate       float64
	watchSettle     time.Duration
	watchExisting   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Ingest files dropped into a directory",
	Long: `Watch a directory and ingest every file that is created or modified in it.

A file is ingested once writes to it have stopped. Hidden files are ignored.
With --collection the chunks are saved to the local chunk store; otherwise a
summary line is printed per file.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDB, "db", "", "chunk store directory (default ~/.sercha-ingest/data)")
	watchCmd.Flags().StringVar(&watchCollection, "collection", "", "save chunks to this collection")
	watchCmd.Flags().Float64Var(&watchRate, "rate", watch.DefaultFilesPerSecond, "maximum files ingested per second")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettleDelay, "quiet period before a file is ingested")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	settings, err := currentSettings()
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store        driven.ChunkStore
		collectionID string
	)
	if watchCollection != "" {
		s, closer, err := openStore(watchDB)
		if err != nil {
			return err
		}
		defer closer.Close()
		if collectionID, err = s.EnsureCollection(ctx, watchCollection); err != nil {
			return fmt.Errorf("failed to open collection %s: %w", watchCollection, err)
		}
		store = s
	}

	out := cmd.OutOrStdout()
	handler := func(ctx context.Context, path string) error {
		result := ingestFile(ctx, path, "", nil, settings.Extraction.MaxUploadBytes)
		if !result.failed() && store != nil {
			if err := store.SaveChunks(ctx, collectionID, result.chunks); err != nil {
				result.Error = fmt.Sprintf("failed to save chunks: %v", err)
			}
		}
		_ = renderResults(out, outputText, []fileResult{result}, false)
		return nil
	}

	w := watch.New(args[0], handler,
		watch.WithRate(watchRate, watch.DefaultBurst),
		watch.WithSettleDelay(watchSettle),
		watch.WithInitialScan(watchExisting),
	)
	cmd.Printf("%s %s\n", styles.Title.Render("Watching"), args[0])
	return w.Run(ctx)
}
