package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var collectionsDB string

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage collections in the local chunk store",
	RunE:  runCollectionsList,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections and their chunk counts",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a collection",
	Long: `Delete a collection from the local chunk store.

Its chunks are left behind as orphans; run 'sercha-ingest cleanup --driver sqlite'
to remove them.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionsDelete,
}

func init() {
	collectionsCmd.PersistentFlags().StringVar(&collectionsDB, "db", "", "chunk store directory (default ~/.sercha-ingest/data)")
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	store, closer, err := openStore(collectionsDB)
	if err != nil {
		return err
	}
	defer closer.Close()

	collections, err := store.ListCollections(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHUNKS\tID")
	for _, c := range collections {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Chunks, c.ID)
	}
	return tw.Flush()
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore(collectionsDB)
	if err != nil {
		return err
	}
	defer closer.Close()

	name := args[0]
	if err := store.DeleteCollection(cmd.Context(), name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("collection %s not found", name)
		}
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	cmd.Printf("Deleted collection %s.\n", name)
	return nil
}
