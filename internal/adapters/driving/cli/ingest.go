package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/mimetype"
)

var (
	ingestMIMEType   string
	ingestMeta       []string
	ingestOutput     string
	ingestWorkers    int
	ingestDB         string
	ingestCollection string
	ingestShowChunks bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Parse and chunk documents",
	Long: `Parse, clean and chunk one or more documents.

The MIME type of each file is detected from its name and content unless
--mime-type is given. Files are processed in parallel; results are printed in
the order the files were given.

With --collection the chunks are also saved to the local chunk store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMIMEType, "mime-type", "", "declared MIME type for every file (default: detect)")
	ingestCmd.Flags().StringArrayVar(&ingestMeta, "meta", nil, "metadata key=value attached to every chunk (repeatable)")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "output format: text or json (default: text on a terminal)")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", runtime.NumCPU(), "number of files processed in parallel")
	ingestCmd.Flags().StringVar(&ingestDB, "db", "", "chunk store directory (default ~/.sercha-ingest/data)")
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "save chunks to this collection")
	ingestCmd.Flags().BoolVar(&ingestShowChunks, "show-chunks", false, "print chunk contents in text output")
	rootCmd.AddCommand(ingestCmd)
}

// chunkOutput is the JSON form of a chunk.
type chunkOutput struct {
	Content  string         `json:"content"`
	Position int            `json:"position"`
	Metadata map[string]any `json:"metadata"`
}

// fileResult is the outcome of ingesting one file.
type fileResult struct {
	File     string        `json:"file"`
	MIMEType string        `json:"mime_type,omitempty"`
	UploadID string        `json:"upload_id,omitempty"`
	Chunks   []chunkOutput `json:"chunks,omitempty"`
	Error    string        `json:"error,omitempty"`

	chunks []domain.Chunk
}

func (r *fileResult) failed() bool {
	return r.Error != ""
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	output, err := resolveOutput(ingestOutput, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	meta, err := parseMeta(ingestMeta)
	if err != nil {
		return err
	}
	settings, err := currentSettings()
	if err != nil {
		return err
	}

	workers := ingestWorkers
	if workers < 1 {
		workers = 1
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]fileResult, len(args))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range args {
		g.Go(func() error {
			results[i] = ingestFile(ctx, path, ingestMIMEType, meta, settings.Extraction.MaxUploadBytes)
			return nil
		})
	}
	_ = g.Wait()

	if ingestCollection != "" {
		if err := saveResults(ctx, ingestDB, ingestCollection, results); err != nil {
			return err
		}
	}

	if err := renderResults(cmd.OutOrStdout(), output, results, ingestShowChunks); err != nil {
		return err
	}

	failed := 0
	for i := range results {
		if results[i].failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// ingestFile reads and ingests one file. Failures are recorded in the result.
func ingestFile(ctx context.Context, path, mimeType string, meta map[string]any, maxBytes int64) fileResult {
	result := fileResult{File: path}

	content, err := readFileLimited(path, maxBytes)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if mimeType == "" {
		mimeType = mimetype.Detect(path, content)
	}
	result.MIMEType = domain.CanonicalMIMEType(mimeType)

	metadata := domain.CloneMetadata(meta)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	if _, ok := metadata[domain.MetaFilename]; !ok {
		metadata[domain.MetaFilename] = filepath.Base(path)
	}

	chunks, err := ingestService.Ingest(ctx, content, mimeType, metadata)
	if err != nil {
		result.Error = errorMessage(err)
		return result
	}

	result.chunks = chunks
	result.Chunks = make([]chunkOutput, len(chunks))
	for i, c := range chunks {
		result.Chunks[i] = chunkOutput{Content: c.Content, Position: c.Position, Metadata: c.Metadata}
	}
	if len(chunks) > 0 {
		result.UploadID, _ = chunks[0].Metadata[domain.MetaUploadID].(string)
	}
	return result
}

// readFileLimited reads a regular file no larger than maxBytes.
func readFileLimited(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), maxBytes)
	}
	return os.ReadFile(path)
}

// saveResults stores the chunks of every successful result in a collection.
func saveResults(ctx context.Context, dataDir, collection string, results []fileResult) error {
	store, closer, err := openStore(dataDir)
	if err != nil {
		return err
	}
	defer closer.Close()

	collectionID, err := store.EnsureCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to open collection %s: %w", collection, err)
	}
	for i := range results {
		if results[i].failed() {
			continue
		}
		if err := store.SaveChunks(ctx, collectionID, results[i].chunks); err != nil {
			return fmt.Errorf("failed to save chunks for %s: %w", results[i].File, err)
		}
	}
	return nil
}

func openStore(dataDir string) (driven.ChunkStore, io.Closer, error) {
	if openChunkStore == nil {
		return nil, nil, errors.New("chunk store not configured")
	}
	store, closer, err := openChunkStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open chunk store: %w", err)
	}
	return store, closer, nil
}

func renderResults(w io.Writer, output string, results []fileResult, showChunks bool) error {
	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i := range results {
		r := &results[i]
		if r.failed() {
			fmt.Fprintf(w, "%s %s %s\n", styles.Error.Render("✗"), r.File, styles.Muted.Render(r.MIMEType))
			fmt.Fprintf(w, "  %s\n", styles.Error.Render(r.Error))
			continue
		}
		fmt.Fprintf(w, "%s %s %s %s\n",
			styles.Success.Render("✓"), r.File, styles.Muted.Render(r.MIMEType),
			fmt.Sprintf("%d chunks", len(r.Chunks)))
		fmt.Fprintf(w, "  %s\n", styles.Muted.Render("upload "+r.UploadID))
		if !showChunks {
			continue
		}
		for _, c := range r.Chunks {
			fmt.Fprintf(w, "  %s\n", styles.Subtitle.Render(fmt.Sprintf("[%d]", c.Position)))
			for _, line := range strings.Split(c.Content, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	return nil
}

// parseMeta turns key=value pairs into a metadata map.
func parseMeta(pairs []string) (map[string]any, error) {
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q (want key=value)", pair)
		}
		meta[key] = value
	}
	return meta, nil
}
