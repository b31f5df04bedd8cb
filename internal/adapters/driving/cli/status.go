package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the database, vector index and AI providers",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage the vector collection",
}

var collectionInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show vector collection statistics",
	Args:  cobra.NoArgs,
	RunE:  runCollectionInfo,
}

var collectionEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the vector collection if it does not exist",
	Args:  cobra.NoArgs,
	RunE:  runCollectionEnsure,
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the record store",
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database statistics",
	Args:  cobra.NoArgs,
	RunE:  runDBInfo,
}

func init() {
	collectionCmd.AddCommand(collectionInfoCmd)
	collectionCmd.AddCommand(collectionEnsureCmd)
	dbCmd.AddCommand(dbInfoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(dbCmd)
}

func requireDiagnostics() error {
	if diagnosticsService == nil {
		return errors.New("diagnostics service not configured")
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireDiagnostics(); err != nil {
		return err
	}
	statuses := diagnosticsService.Services(cmd.Context())
	if jsonFlag {
		return printJSON(cmd, statuses)
	}

	down := 0
	for _, s := range statuses {
		mark := "ok"
		if !s.Available {
			mark = "unavailable"
			down++
		}
		cmd.Printf("  %-14s %s", s.Name, mark)
		if s.Detail != "" {
			cmd.Printf("  (%s)", s.Detail)
		}
		cmd.Println()
	}
	if down > 0 {
		return fmt.Errorf("%d of %d services unavailable", down, len(statuses))
	}
	return nil
}

func runCollectionInfo(cmd *cobra.Command, _ []string) error {
	if err := requireDiagnostics(); err != nil {
		return err
	}
	info, err := diagnosticsService.Collection(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("collection does not exist, run \"docrag collection ensure\": %w", err)
		}
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, info)
	}
	cmd.Printf("Collection:      %s\n", info.Name)
	cmd.Printf("Status:          %s\n", info.Status)
	cmd.Printf("Points:          %d\n", info.PointsCount)
	cmd.Printf("Indexed vectors: %d\n", info.IndexedVectorsCount)
	return nil
}

func runCollectionEnsure(cmd *cobra.Command, _ []string) error {
	if err := requireDiagnostics(); err != nil {
		return err
	}
	if err := diagnosticsService.EnsureCollection(cmd.Context()); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	cmd.Println("Collection ready.")
	return nil
}

func runDBInfo(cmd *cobra.Command, _ []string) error {
	if err := requireDiagnostics(); err != nil {
		return err
	}
	info, err := diagnosticsService.Database(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get database info: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, info)
	}
	cmd.Printf("Driver:            %s\n", info.Driver)
	cmd.Printf("Version:           %s\n", info.Version)
	cmd.Printf("Size:              %s\n", info.Size)
	cmd.Printf("Documents:         %d\n", info.Documents)
	cmd.Printf("Indexed documents: %d\n", info.IndexedDocuments)
	cmd.Printf("Chats:             %d\n", info.Chats)
	return nil
}
