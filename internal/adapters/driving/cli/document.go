package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long:  `Upload files, extract their text, index them for retrieval, or remove them.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentExtractCmd = &cobra.Command{
	Use:   "extract [doc-id]",
	Short: "Extract text from the stored file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentExtract,
}

var documentIndexCmd = &cobra.Command{
	Use:   "index [doc-id]",
	Short: "Chunk, embed and index extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentIndex,
}

var documentIngestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Upload, extract and index a file in one step",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentIngest,
}

var documentPreviewCmd = &cobra.Command{
	Use:   "preview [doc-id]",
	Short: "Print a short-lived preview URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentPreview,
}

var documentDownloadCmd = &cobra.Command{
	Use:   "download [doc-id]",
	Short: "Print a download URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDownload,
}

var documentResetCmd = &cobra.Command{
	Use:   "reset [doc-id]",
	Short: "Drop a document's vectors so it can be indexed again",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReset,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document, its file and its vectors",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var (
	uploadContentType string
	listAll           bool
	showText          bool
)

func init() {
	documentUploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "MIME type (detected when empty)")
	documentIngestCmd.Flags().StringVar(&uploadContentType, "content-type", "", "MIME type (detected when empty)")
	documentListCmd.Flags().BoolVar(&listAll, "all", false, "list documents of every owner")
	documentShowCmd.Flags().BoolVar(&showText, "text", false, "print the extracted text")

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentExtractCmd)
	documentCmd.AddCommand(documentIndexCmd)
	documentCmd.AddCommand(documentIngestCmd)
	documentCmd.AddCommand(documentPreviewCmd)
	documentCmd.AddCommand(documentDownloadCmd)
	documentCmd.AddCommand(documentResetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func requireDocuments() error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

func uploadFile(cmd *cobra.Command, path string) (*domain.Document, error) {
	ownerID, err := owner()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return documentService.Upload(cmd.Context(), driving.UploadRequest{
		OwnerID:     ownerID,
		Filename:    filepath.Base(path),
		ContentType: uploadContentType,
		Size:        info.Size(),
		Body:        f,
	})
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	doc, err := uploadFile(cmd, args[0])
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, doc)
	}
	cmd.Printf("Uploaded %s (%s, %s)\n", doc.Name, doc.ContentType, domain.FormatFileSize(doc.Size))
	cmd.Printf("  ID: %s\n", doc.ID)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	var (
		docs []domain.DocumentSummary
		err  error
	)
	if listAll {
		docs, err = documentService.ListAll(cmd.Context())
	} else {
		var ownerID string
		if ownerID, err = owner(); err != nil {
			return err
		}
		docs, err = documentService.List(cmd.Context(), ownerID)
	}
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	for i := range docs {
		d := &docs[i]
		text := "no"
		if d.HasRawText {
			text = "yes"
		}
		cmd.Printf("  %s  %-10s %s\n", d.ID, d.Status, d.Name)
		cmd.Printf("    %s, %s, text: %s, uploaded %s\n",
			d.ContentType, domain.FormatFileSize(d.Size), text, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, doc)
	}

	cmd.Printf("ID:           %s\n", doc.ID)
	cmd.Printf("Name:         %s\n", doc.Name)
	cmd.Printf("Type:         %s\n", doc.ContentType)
	cmd.Printf("Size:         %s\n", domain.FormatFileSize(doc.Size))
	cmd.Printf("Status:       %s\n", doc.Status)
	cmd.Printf("Source:       %s\n", domain.FormatSource(doc.Source))
	cmd.Printf("Owner:        %s\n", doc.OwnerID)
	cmd.Printf("Storage key:  %s\n", doc.StorageKey)
	cmd.Printf("Uploaded:     %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated:      %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Text:         %d characters\n", len([]rune(doc.RawText)))
	if showText && doc.HasRawText() {
		cmd.Println()
		cmd.Println(doc.RawText)
	}
	return nil
}

func runDocumentExtract(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	doc, err := documentService.ExtractText(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, doc)
	}
	cmd.Printf("Extracted %d characters from %s\n", len([]rune(doc.RawText)), doc.Name)
	return nil
}

func runDocumentIndex(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	report, err := ingestService.Index(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return printReport(cmd, report)
}

func runDocumentIngest(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	doc, err := uploadFile(cmd, args[0])
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if !jsonFlag {
		cmd.Printf("Uploaded %s as %s\n", doc.Name, doc.ID)
	}
	if _, err := documentService.ExtractText(cmd.Context(), doc.ID); err != nil {
		return fmt.Errorf("extraction failed for %s: %w", doc.ID, err)
	}
	report, err := ingestService.Index(cmd.Context(), doc.ID)
	if err != nil {
		return fmt.Errorf("indexing failed for %s: %w", doc.ID, err)
	}
	return printReport(cmd, report)
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) error {
	if jsonFlag {
		return printJSON(cmd, r)
	}
	cmd.Printf("Indexed %s\n", r.DocumentID)
	cmd.Printf("  Chunks:  %d (avg %d, min %d, max %d chars)\n",
		r.Stats.TotalChunks, r.Stats.AverageChunkSize, r.Stats.MinChunkSize, r.Stats.MaxChunkSize)
	cmd.Printf("  Points:  %d\n", r.PointsIndexed)
	cmd.Printf("  Tokens:  %d (%s)\n", r.TokensUsed, r.Model)
	cmd.Printf("  Cost:    %s\n", domain.FormatCost(r.EstimatedCost))
	cmd.Printf("  Took:    %s\n", r.Duration.Round(time.Millisecond))
	return nil
}

func runDocumentPreview(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	url, err := documentService.PreviewURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return printURL(cmd, url)
}

func runDocumentDownload(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	url, err := documentService.DownloadURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return printURL(cmd, url)
}

func printURL(cmd *cobra.Command, url string) error {
	if jsonFlag {
		return printJSON(cmd, map[string]string{"url": url})
	}
	cmd.Println(url)
	return nil
}

func runDocumentReset(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	doc, err := documentService.Reset(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Printf("Document %s is %s\n", doc.ID, doc.Status)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
