// Package cli provides the cobra command tree for docrag.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Options carries the global flags into the bootstrap functions.
type Options struct {
	ConfigPath string
	Ephemeral  bool
	Verbose    bool
}

// Services are the driving ports the commands call.
type Services struct {
	Documents   driving.DocumentService
	Ingest      driving.IngestService
	Chat        driving.ChatService
	Retrieval   driving.RetrievalService
	Diagnostics driving.DiagnosticsService
	Settings    driving.SettingsService

	// OwnerID is used when --owner is not given.
	OwnerID string

	// Metrics is served on /metrics by the MCP HTTP mode. May be nil.
	Metrics http.Handler

	// Close releases connections. May be nil.
	Close func()
}

// Bootstrap builds services once flags are parsed. Settings is used by
// commands that must work before providers are configured.
type Bootstrap struct {
	Settings func(opts Options) (driving.SettingsService, error)
	Services func(ctx context.Context, opts Options) (*Services, error)
}

// annotationSettingsOnly marks commands that need only the settings service.
const annotationSettingsOnly = "settings-only"

var (
	bootstrap Bootstrap
	opts      Options
	ownerFlag string
	jsonFlag  bool

	// Set by setup, or directly by tests.
	documentService    driving.DocumentService
	ingestService      driving.IngestService
	chatService        driving.ChatService
	retrievalService   driving.RetrievalService
	diagnosticsService driving.DiagnosticsService
	settingsService    driving.SettingsService
	metricsHandler     http.Handler
	defaultOwner       string
	closeServices      func()
)

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Document ingestion and retrieval-augmented chat",
	Long: `docrag stores uploaded documents, extracts their text, indexes it as
embedded chunks in a vector store and answers questions about it with an LLM.

Typical flow:
  docrag document ingest report.pdf
  docrag chat send <chat-id> "What does the report conclude?"`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.docrag/config.toml)")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep records, files and vectors in memory")
	flags.StringVar(&ownerFlag, "owner", "", "owner id (default from settings)")
	flags.BoolVar(&jsonFlag, "json", false, "output as JSON")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the command tree.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	return rootCmd.ExecuteContext(ctx)
}

// setup builds services unless they were already injected.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if cmd.Annotations[annotationSettingsOnly] == "true" {
		if settingsService != nil {
			return nil
		}
		if bootstrap.Settings == nil {
			return errors.New("settings not configured")
		}
		svc, err := bootstrap.Settings(opts)
		if err != nil {
			return err
		}
		settingsService = svc
		return nil
	}

	if documentService != nil || cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}
	if bootstrap.Services == nil {
		return errors.New("services not configured")
	}
	svc, err := bootstrap.Services(cmd.Context(), opts)
	if err != nil {
		return err
	}
	setServices(svc)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
	return nil
}

func setServices(s *Services) {
	documentService = s.Documents
	ingestService = s.Ingest
	chatService = s.Chat
	retrievalService = s.Retrieval
	diagnosticsService = s.Diagnostics
	settingsService = s.Settings
	metricsHandler = s.Metrics
	defaultOwner = s.OwnerID
	closeServices = s.Close
}

// owner returns --owner or the configured default.
func owner() (string, error) {
	if ownerFlag != "" {
		return ownerFlag, nil
	}
	if defaultOwner != "" {
		return defaultOwner, nil
	}
	return "", errors.New("no owner: pass --owner or set owner_id")
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
